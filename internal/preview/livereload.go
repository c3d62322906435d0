package preview

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HeartbeatInterval is how often idle live-reload streams get a comment line.
var HeartbeatInterval = 30 * time.Second

// Hub fans build notifications out to connected browsers over server-sent
// events. Each message carries the id of the build that produced the output.
type Hub struct {
	mu      sync.Mutex
	nextID  int
	clients map[int]*client
	closed  bool
	last    string
	logger  *slog.Logger
}

type client struct {
	ch   chan string
	done chan struct{}
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: map[int]*client{}, logger: logger}
}

// Clients is the number of connected streams.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP streams notifications until the client goes away or the hub shuts
// down. A new stream first receives the latest build id, if any.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "live reload shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	c := &client{ch: make(chan string, 8), done: make(chan struct{})}
	h.clients[id] = c
	last := h.last
	h.mu.Unlock()
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(format string, args ...any) bool {
		if _, err := fmt.Fprintf(bw, format, args...); err != nil {
			h.logger.Debug("Live reload write failed", slog.Any("error", err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(": connected\n\n") {
		return
	}
	if last != "" && !send("data: {\"build\":%q}\n\n", last) {
		return
	}

	hb := time.NewTicker(HeartbeatInterval)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case build := <-c.ch:
			if !send("data: {\"build\":%q}\n\n", build) {
				return
			}
		}
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast notifies every client of build. Repeated ids are ignored and
// clients that cannot keep up are dropped.
func (h *Hub) Broadcast(build string) {
	h.mu.Lock()
	if h.closed || build == "" || build == h.last {
		h.mu.Unlock()
		return
	}
	h.last = build
	ids := make([]int, 0, len(h.clients))
	chans := make([]chan string, 0, len(h.clients))
	for id, c := range h.clients {
		ids = append(ids, id)
		chans = append(chans, c.ch)
	}
	h.mu.Unlock()

	dropped := 0
	for i, ch := range chans {
		select {
		case ch <- build:
		default:
			dropped++
			h.remove(ids[i])
		}
	}
	h.logger.Debug("Live reload broadcast", slog.String("build", build), slog.Int("clients", len(chans)), slog.Int("dropped", dropped))
}

// Shutdown disconnects every client and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

// Script is served at /livereload.js.
const Script = `(() => {
  if (window.__SERGEY_LR__) return;
  window.__SERGEY_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.build; return; }
        if (p.build && p.build !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();
`
