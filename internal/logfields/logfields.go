package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyCategory   = "category"
	KeyTitle      = "title"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// HTTP request fields used by server middleware.
func Method(m string) slog.Attr     { return slog.String("method", m) }
func URLPath(p string) slog.Attr    { return slog.String("path", p) }
func HTTPStatus(c int) slog.Attr    { return slog.Int("status", c) }
func UserAgent(ua string) slog.Attr { return slog.String("user_agent", ua) }
func RemoteAddr(a string) slog.Attr { return slog.String("remote_addr", a) }
