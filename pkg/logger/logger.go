package logger

// Printf-style helpers for startup and migration output.
// Request-scoped logging goes through GetLogger / WithRequestID.

// Info logs an informational message
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}
