//go:build !darwin || !cgo

package accel

import "codeberg.org/skarn/hwmon/internal/errors"

type systemRegistry struct{}

// SystemRegistry returns the platform service registry. This platform has
// none, so every enumeration fails and utilization reads as unavailable.
func SystemRegistry() Registry {
	return systemRegistry{}
}

func (systemRegistry) MatchingServices(string) (Iterator, error) {
	return nil, errors.New().New(ErrUnsupportedPlatform)
}
