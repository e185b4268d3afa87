// Package logger provides structured logging for the SDK using zerolog.
//
// It supports JSON and console output, log level configuration and
// component-scoped loggers with structured fields. The SDK logs through
// the global logger unless a caller injects its own.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("session")
//	log.Info("token refreshed", logger.Fields("client_id", masked))
package logger
