//go:build darwin && cgo

package telemetry

import (
	"codeberg.org/skarn/hwmon/internal/accel"
	"codeberg.org/skarn/hwmon/internal/config"
	"codeberg.org/skarn/hwmon/internal/smc"
)

// NewPlatformSource returns the IOKit-backed source: accelerator services
// for GPU utilization, the SMC keyed protocol for CPU temperature.
func NewPlatformSource(cfg *config.Config) Source {
	return NewHardwareSource(accel.SystemRegistry(), smc.Dial, cfg.GPUKeys, cfg.TempKeys)
}
