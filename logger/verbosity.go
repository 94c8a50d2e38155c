package logger

import "github.com/rs/zerolog"

// LevelForVerbosity maps a process verbosity count onto a zerolog level.
// 0 keeps errors only; every step up opens one more level, and anything past
// debug is trace.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.ErrorLevel
	case verbosity == 1:
		return zerolog.WarnLevel
	case verbosity == 2:
		return zerolog.InfoLevel
	case verbosity == 3:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
