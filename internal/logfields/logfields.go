package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID    = "run_id"
	KeyTask     = "task"
	KeyCommand  = "command"
	KeyDir      = "dir"
	KeyExitCode = "exit_code"
	KeyPath     = "path"
	KeyFile     = "file"
	KeyHost     = "host"
	KeyDatabase = "database"
	KeyService  = "service"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr      { return slog.String(KeyRunID, id) }
func Task(name string) slog.Attr     { return slog.String(KeyTask, name) }
func Command(cmd string) slog.Attr   { return slog.String(KeyCommand, cmd) }
func Dir(dir string) slog.Attr       { return slog.String(KeyDir, dir) }
func ExitCode(code int) slog.Attr    { return slog.Int(KeyExitCode, code) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func File(f string) slog.Attr        { return slog.String(KeyFile, f) }
func Host(h string) slog.Attr        { return slog.String(KeyHost, h) }
func Database(db string) slog.Attr   { return slog.String(KeyDatabase, db) }
func Service(s string) slog.Attr     { return slog.String(KeyService, s) }
func DurationMS(ms int64) slog.Attr  { return slog.Int64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
