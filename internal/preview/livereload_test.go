package preview

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readEvent returns the next non-empty line of an event stream.
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
}

func connect(t *testing.T, url string) (*bufio.Reader, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body), func() {
		cancel()
		resp.Body.Close()
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	r, done := connect(t, srv.URL)
	defer done()
	assert.Equal(t, ": connected", readEvent(t, r))
	assert.Equal(t, 1, hub.Clients())

	hub.Broadcast("b1")
	hub.Broadcast("b1")
	hub.Broadcast("")
	hub.Broadcast("b2")
	assert.Equal(t, `data: {"build":"b1"}`, readEvent(t, r))
	assert.Equal(t, `data: {"build":"b2"}`, readEvent(t, r))
}

func TestHub_NewClientGetsLatestBuild(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("b7")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	r, done := connect(t, srv.URL)
	defer done()
	assert.Equal(t, ": connected", readEvent(t, r))
	assert.Equal(t, `data: {"build":"b7"}`, readEvent(t, r))
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	r, done := connect(t, srv.URL)
	readEvent(t, r)
	done()

	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	r, done := connect(t, srv.URL)
	defer done()
	readEvent(t, r)

	hub.Shutdown()
	// Returns once the server ends the stream.
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 0, hub.Clients())

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
