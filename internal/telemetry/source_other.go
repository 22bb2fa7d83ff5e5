//go:build (!darwin && !linux) || !cgo

package telemetry

import "codeberg.org/skarn/hwmon/internal/config"

// NewPlatformSource returns the unavailable source: this platform exposes
// neither accelerator nor sensor services, so only CPU and RAM are
// reported.
func NewPlatformSource(*config.Config) Source {
	return Unavailable()
}
