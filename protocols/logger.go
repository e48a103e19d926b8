package protocols

// Logger is the structured logger consumed by the use cases. Arguments
// follow the slog convention of alternating keys and values. The logger is
// optional everywhere it is injected: callers must tolerate a nil Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
