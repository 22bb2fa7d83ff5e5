//go:build linux && cgo

package telemetry

import (
	"strings"

	"codeberg.org/skarn/hwmon/internal/config"
	"codeberg.org/skarn/hwmon/internal/logger"
	"codeberg.org/skarn/hwmon/internal/smc"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/shirou/gopsutil/v4/sensors"
)

// Hwmon driver names whose sensors report CPU package or core temperature.
var cpuSensorPrefixes = []string{
	"coretemp",
	"k10temp",
	"zenpower",
	"cpu_thermal",
}

// NewPlatformSource returns the Linux source: NVML for GPU utilization,
// hwmon sensors for CPU temperature.
func NewPlatformSource(*config.Config) Source {
	return nvmlSource{}
}

type nvmlSource struct{}

// GPUUsage averages utilization across all NVML devices. The NVML session
// is acquired for exactly one enumeration pass and released before
// returning.
func (nvmlSource) GPUUsage() (float64, bool) {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Debug().Str("nvml", nvml.ErrorString(ret)).Msg("NVML unavailable")
		return 0, false
	}
	defer nvml.Shutdown()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, false
	}

	var total float64
	var n int

	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		util, ret := device.GetUtilizationRates()
		if ret != nvml.SUCCESS {
			continue
		}
		total += float64(util.Gpu)
		n++
	}

	if n == 0 {
		return 0, false
	}

	return total / float64(n), true
}

// CPUTemperature averages all plausible readings from CPU-class hwmon
// sensors, using the same acceptance band as the SMC client.
func (nvmlSource) CPUTemperature() (float64, bool) {
	temps, err := sensors.SensorsTemperatures()
	if err != nil {
		return 0, false
	}

	var sum float64
	var n int

	for _, t := range temps {
		if !isCPUSensor(t.SensorKey) {
			continue
		}
		if !smc.PlausibleCPUTemperature(t.Temperature) {
			continue
		}
		sum += t.Temperature
		n++
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

func isCPUSensor(key string) bool {
	for _, prefix := range cpuSensorPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
