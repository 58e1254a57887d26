package core

// Logger is implemented by any leveled logging service.
//
// Error and Fatal accept extra args to attach to the report; an arg of type
// user.User identifies the person the error occurred for (see services/logger).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
