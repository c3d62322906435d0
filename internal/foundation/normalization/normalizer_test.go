package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	red   color = "red"
	green color = "green"
	blue  color = "blue"
)

func colors() *Normalizer[color] {
	return New(map[string]color{"red": red, "Green": green, " blue ": blue}, red)
}

func TestNormalize(t *testing.T) {
	n := colors()
	tests := []struct {
		in   string
		want color
	}{
		{"red", red},
		{"GREEN", green},
		{"  blue\t", blue},
		{"purple", red},
		{"", red},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	n := colors()

	v, err := n.Parse(" Blue")
	require.NoError(t, err)
	assert.Equal(t, blue, v)

	v, err = n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, red, v)

	_, err = n.Parse("purple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blue, green, red")
}

func TestValidAndKeys(t *testing.T) {
	n := colors()
	assert.True(t, n.Valid(green))
	assert.False(t, n.Valid(color("purple")))

	keys := n.Keys()
	assert.Equal(t, []string{"blue", "green", "red"}, keys)
	keys[0] = "changed"
	assert.Equal(t, "blue", n.Keys()[0])
}
