package common

// Logger receives diagnostic output. *slog.Logger satisfies it on native
// builds and the browser build installs a console-backed implementation.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var EnableDebug = true

var sink Logger = discard{}

// SetLogger installs the logger used by Debug, DebugWarn and DebugError.
// A nil logger discards everything.
func SetLogger(l Logger) {
	if l == nil {
		l = discard{}
	}
	sink = l
}

// Debug logs a message if debug mode is enabled.
func Debug(msg string, args ...any) {
	if EnableDebug {
		sink.Debug(msg, args...)
	}
}

// DebugWarn logs a warning if debug mode is enabled.
func DebugWarn(msg string, args ...any) {
	if EnableDebug {
		sink.Warn(msg, args...)
	}
}

// DebugError logs an error if debug mode is enabled.
func DebugError(msg string, args ...any) {
	if EnableDebug {
		sink.Error(msg, args...)
	}
}

type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
