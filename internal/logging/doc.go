// Package logging provides structured logging for the Nightstand daemon.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the daemon. It provides both general logging
// functions and specialized helpers for connection and strip events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (frame dispatch, transmit pacing)
//   - Info: Normal operations (connections, commands, state changes)
//   - Warn: Non-fatal issues (rejected payloads, connection drops)
//   - Error: Fatal issues (startup failures, peripheral errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Pixel command accepted",
//	    zap.String("remote_addr", "192.168.1.100"),
//	    zap.Int("pixels", 12),
//	)
//
// # Configuration
//
// Initialize logging at daemon startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is passed, NIGHTSTAND_LOG_LEVEL decides; if that is unset
// too, logging is silent. This keeps one-shot CLI commands quiet by default.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
