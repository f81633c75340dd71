package chat

// Logger - interface for logging chat events.
// Arguments after the message are key/value pairs, so *slog.Logger fits as is.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

func logInfo(l Logger, msg string, args ...any) {
	if l == nil {
		return
	}
	l.Info(msg, args...)
}

func logError(l Logger, msg string, args ...any) {
	if l == nil {
		return
	}
	l.Error(msg, args...)
}
