package telemetry

import (
	"codeberg.org/skarn/hwmon/internal/accel"
	"codeberg.org/skarn/hwmon/internal/smc"
)

// hardwareSource composes the accelerator enumerator and the sensor
// protocol client into one Source. Both collaborators are stateless per
// call; no handle they acquire outlives a single query.
type hardwareSource struct {
	accel *accel.Enumerator
	smc   *smc.Client
}

// NewHardwareSource builds a Source over a service registry and a
// management-service dialer, probing the given key priority tables.
func NewHardwareSource(registry accel.Registry, dial smc.DialFunc, gpuKeys, tempKeys []string) Source {
	return &hardwareSource{
		accel: accel.NewEnumerator(registry, gpuKeys),
		smc:   smc.NewClient(dial, tempKeys),
	}
}

func (s *hardwareSource) GPUUsage() (float64, bool) {
	return s.accel.GPUUsage()
}

func (s *hardwareSource) CPUTemperature() (float64, bool) {
	return s.smc.CPUTemperature()
}
