package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolved_PrefersLinkedVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", Resolved())
}

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v0.1.0"
	assert.Equal(t, "sergey v0.1.0 (commit unknown, built unknown)", String())
}
