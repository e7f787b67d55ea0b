// Package logging provides a minimal logging interface and adapters for toolmesh.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// the engine, scheduler and stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - MeshLogger, a configurable slog based logger with session/component context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "text"})
//	eng := engine.New(func(o *engine.Options) { o.Logger = logger })
//
// Arguments after the message are slog style key/value pairs.
package logging
