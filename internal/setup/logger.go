package setup

import "log/slog"

var packageLogger *slog.Logger

// SetLogger sets the logger used while validating the environment. Nil restores the default.
func SetLogger(logger *slog.Logger) {
	packageLogger = logger
}

func getLogger() *slog.Logger {
	if packageLogger != nil {
		return packageLogger
	}
	return slog.Default()
}
