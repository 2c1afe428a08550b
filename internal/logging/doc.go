// Package logging provides structured logging for autobuilder.
//
// This package wraps a zap logger with package-level convenience functions so
// that every layer (API client, TUI, sandbox backend) logs the same way.
// Logging is silent unless a level is requested, because the interactive
// wizard owns the terminal.
//
// # Log Levels
//
//   - Debug: request/response bodies, websocket frames
//   - Info: API calls, screen transitions, sandbox startup
//   - Warn: swallowed failures (empty-state list fetches, watcher drops)
//   - Error: failures surfaced to the user
//
// # Structured Logging
//
//	logging.Info("Workflow designed",
//	    zap.String("request_id", id),
//	    zap.Int("nodes", len(design.Nodes)),
//	)
//
// API traffic has dedicated helpers:
//
//	logging.LogAPIRequest(requestID, "POST", "/api/workflows/design")
//	logging.LogAPIResponse(requestID, 200, elapsed)
//
// # Configuration
//
//	if err := logging.Initialize("debug", "/tmp/autobuilder.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When the level argument is empty, AUTOBUILDER_LOG_LEVEL is consulted. When
// both are empty a nop logger is installed. The output path defaults to
// stderr.
package logging
