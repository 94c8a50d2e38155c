// Package logger provides structured logging for pointflow using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers for individual stages, and an Enabled predicate so stages can tell
// whether a diagnostic would be emitted before building it.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"   # stdout, stderr, devnull or a file path
//
// # Usage
//
//	log := logger.Get("filters.splitter")
//	if log.Enabled(zerolog.DebugLevel) {
//	    log.Debug("cells", logger.Fields("count", len(cells)))
//	}
package logger
