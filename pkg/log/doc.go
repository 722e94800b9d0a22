// Package log provides structured protocol logging for ox.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, pubsub, service).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/ox/session.olog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: Raw stanzas in both directions (StanzaEvent)
//   - PubSub: Classified notifications (PubSubEvent) and redirects (RedirectEvent)
//
// Errors at any layer have a dedicated event type.
//
// # File Format
//
// Log files use CBOR encoding with .olog extension. The ox-log CLI tool
// provides viewing, export and statistics.
package log
