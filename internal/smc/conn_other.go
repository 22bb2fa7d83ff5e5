//go:build !darwin || !cgo

package smc

import "codeberg.org/skarn/hwmon/internal/errors"

// Dial always fails: this platform does not expose the management service.
func Dial() (Conn, error) {
	return nil, errors.New().New(ErrUnsupportedPlatform)
}
