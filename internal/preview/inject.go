package preview

import (
	"bytes"
	"net/http"
	"strings"
)

const (
	scriptTag = `<script async src="/livereload.js"></script>`
	// maxInjectSize bounds the buffered page; larger responses pass through.
	maxInjectSize = 1 << 20
)

// injectScript adds the live-reload script to HTML pages served by next.
func injectScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		iw := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(iw, r)
		iw.finish()
	})
}

// injector buffers an HTML response so the script can go in before </body>.
type injector struct {
	http.ResponseWriter
	status      int
	buf         []byte
	buffering   bool
	passthrough bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	if i.passthrough {
		i.ResponseWriter.WriteHeader(code)
	}
}

func (i *injector) Write(data []byte) (int, error) {
	if !i.buffering && !i.passthrough {
		ct := i.Header().Get("Content-Type")
		if i.status != http.StatusOK || (ct != "" && !strings.Contains(ct, "text/html")) {
			i.startPassthrough()
			return i.ResponseWriter.Write(data)
		}
		i.buffering = true
	}
	if i.passthrough {
		return i.ResponseWriter.Write(data)
	}
	if len(i.buf)+len(data) > maxInjectSize {
		i.startPassthrough()
		if _, err := i.ResponseWriter.Write(i.buf); err != nil {
			return 0, err
		}
		i.buf = nil
		return i.ResponseWriter.Write(data)
	}
	i.buf = append(i.buf, data...)
	return len(data), nil
}

func (i *injector) startPassthrough() {
	i.passthrough = true
	i.ResponseWriter.WriteHeader(i.status)
}

func (i *injector) finish() {
	if i.passthrough {
		return
	}
	if !i.buffering {
		i.ResponseWriter.WriteHeader(i.status)
		return
	}
	body := i.buf
	if at := bytes.LastIndex(body, []byte("</body>")); at >= 0 {
		out := make([]byte, 0, len(body)+len(scriptTag))
		out = append(out, body[:at]...)
		out = append(out, scriptTag...)
		body = append(out, body[at:]...)
	}
	i.Header().Del("Content-Length")
	i.ResponseWriter.WriteHeader(i.status)
	_, _ = i.ResponseWriter.Write(body)
}
