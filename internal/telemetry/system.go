package telemetry

import (
	"codeberg.org/skarn/hwmon/internal/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type systemReader struct{}

// NewSystemReader returns the OS-backed counter reader. CPU utilization is
// computed against the previous call's counters, so the first reading after
// startup reports 0.
func NewSystemReader() SystemReader {
	return systemReader{}
}

func (systemReader) CPUPercent() (float64, error) {
	errFactory := errors.New()

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, errFactory.Wrap(ErrCPUReadFailed, err)
	}
	if len(percents) == 0 {
		return 0, nil
	}

	return percents[0], nil
}

func (systemReader) Memory() (uint64, uint64, error) {
	errFactory := errors.New()

	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, errFactory.Wrap(ErrMemoryReadFailed, err)
	}

	return vm.Used, vm.Total, nil
}
