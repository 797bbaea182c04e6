// Package logging provides structured logging for Rackview Core.
//
// Built on log/slog with service-wide default attributes, configurable
// level filtering, and JSON or text output.
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("server started", "port", 8080)
package logging
