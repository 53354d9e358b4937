// Package logging provides structured logging for trafficled.
//
// It wraps a global zap logger. The logger is silent until Initialize is
// called with a level or TRAFFICLED_LOG_LEVEL is set, so library code can log
// freely without polluting CLI output.
//
// # Log Levels
//
//   - Debug: chunk dumps, token boundaries, websocket messages
//   - Info: served requests, fetch results, update decisions
//   - Warn: parse failures and retried fetches
//   - Error: startup failures
//
// # Chunk Dumps
//
// The stream cursor logs each chunk it pulls from a source through
// ChunkFields, guarded by Check so the dumps are only built when debug
// logging is on:
//
//	if ce := log.Check(zap.DebugLevel, "Chunk received"); ce != nil {
//	    ce.Write(logging.ChunkFields(offset, data)...)
//	}
//
// The entry carries the stream offset plus hex and ASCII dumps capped at
// 256 bytes.
//
// # Configuration
//
//	if err := logging.Initialize(cfg.LogLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so that command output on stdout
// stays clean.
package logging
