// Package logger provides structured logging for streamgen using zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers carrying stream fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("adapter")
//	log.Info("stream ended", logger.Fields(logger.FieldStreamID, id, logger.FieldBytes, n))
package logger
