// Package logging provides a minimal logging facade for the ADLX wrapper.
//
// The Logger interface wraps a subset of the standard library's log/slog
// functionality. It is intentionally small so applications can provide a
// custom implementation for testing or integration with an existing logging
// system.
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	logger := logging.New(slog.New(handler))
//
// Loggers are threaded through adlx.Config; the wrapper logs lifecycle
// transitions such as initialize and terminate.
package logging
