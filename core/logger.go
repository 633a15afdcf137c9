package core

// Logger is the app-wide structured logging contract.
// Implementations may forward records to an error tracker on top of writing
// them to the standard logger.
// Trailing args may carry an error, a map of extra fields or the acting
// user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
