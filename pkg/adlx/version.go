package adlx

import (
	"fmt"

	"github.com/epinter/adlxwrapper/internal/bindings"
)

// Version is the wrapper's semantic version, populated at build time via
// ldflags. In development it defaults to the placeholder below.
var Version = "v0.0.0-dev"

// WrapperVersion returns the wrapper's own version.
func WrapperVersion() string {
	return Version
}

// RequiredNativeVersion returns the ADLX version the shape tables were
// transcribed against. Initialize refuses older modules.
func RequiredNativeVersion() string {
	return fmt.Sprintf("%d.%d.%d", bindings.VersionMajor, bindings.VersionMinor, bindings.VersionRelease)
}
