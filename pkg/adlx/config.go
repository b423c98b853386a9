package adlx

import "github.com/epinter/adlxwrapper/pkg/adlx/logging"

// Config expresses the knobs required to bind the native ADLX library.
type Config struct {
	// LibraryPath overrides the module loaded at Init. Leaving it empty
	// loads the platform default name from the system search path.
	LibraryPath string

	// Logger receives lifecycle and capability-negotiation events. Nil
	// binds to the slog default logger.
	Logger logging.Logger
}

func (c Config) logger() logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.New(nil)
}
