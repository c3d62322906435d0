package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyKey        = "key"
	KeyNamespace  = "namespace"
	KeyChain      = "chain"
	KeyDurationMS = "duration_ms"
	KeyCompiled   = "compiled"
	KeyCopied     = "copied"
	KeyFailed     = "failed"
	KeyPartials   = "partials"
	KeyAddr       = "addr"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Key(k string) slog.Attr          { return slog.String(KeyKey, k) }
func Namespace(ns string) slog.Attr   { return slog.String(KeyNamespace, ns) }
func Chain(c string) slog.Attr        { return slog.String(KeyChain, c) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Compiled(n int) slog.Attr        { return slog.Int(KeyCompiled, n) }
func Copied(n int) slog.Attr          { return slog.Int(KeyCopied, n) }
func Failed(n int) slog.Attr          { return slog.Int(KeyFailed, n) }
func Partials(n int) slog.Attr        { return slog.Int(KeyPartials, n) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
