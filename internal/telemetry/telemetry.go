// Package telemetry aggregates OS counters and platform hardware sensors
// into a throttled, cached system snapshot.
package telemetry

import (
	"time"

	"codeberg.org/skarn/hwmon/internal/errors"
	"codeberg.org/skarn/hwmon/internal/logger"
)

// DefaultInterval is the minimum time between two full refresh passes.
const DefaultInterval = time.Second

type Config struct {
	// Interval is the refresh throttle window. Zero means DefaultInterval.
	Interval time.Duration

	// Source supplies GPU usage and CPU temperature. Nil means the
	// unavailable source: CPU and RAM are still reported.
	Source Source

	// System supplies OS CPU and memory counters. Nil means the default
	// OS-backed reader.
	System SystemReader
}

func (c Config) Validate() error {
	if c.Interval < 0 {
		return errors.New().WithData(ErrInvalidInterval, c.Interval)
	}
	return nil
}

// Monitor owns the refresh throttle and the last-known snapshot. It holds
// the only mutable timing state in the subsystem; hardware sources are
// stateless per call. A Monitor is not safe for concurrent use: the caller
// serializes Refresh, or performs refreshes on one goroutine and hands
// copies of the returned snapshot to readers.
type Monitor struct {
	source   Source
	system   SystemReader
	interval time.Duration
	last     time.Time
	snapshot Snapshot
	primed   bool
}

func New(cfg Config) (*Monitor, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Source == nil {
		cfg.Source = Unavailable()
	}
	if cfg.System == nil {
		cfg.System = NewSystemReader()
	}

	return &Monitor{
		source:   cfg.Source,
		system:   cfg.System,
		interval: cfg.Interval,
	}, nil
}

// Refresh returns the current snapshot, computing a fresh one only when the
// throttle interval has elapsed since the last successful pass. Inside the
// window it returns the cached snapshot unchanged.
func (m *Monitor) Refresh(now time.Time) Snapshot {
	if m.primed && now.Sub(m.last) < m.interval {
		return m.snapshot
	}

	m.snapshot = m.collect()
	m.last = now
	m.primed = true

	return m.snapshot
}

// Snapshot returns the last cached snapshot without refreshing.
func (m *Monitor) Snapshot() Snapshot {
	return m.snapshot
}

// collect performs one full pass. Every hardware failure degrades its
// metric to absent; nothing here is fatal to the caller.
func (m *Monitor) collect() Snapshot {
	var snap Snapshot

	cpuPct, err := m.system.CPUPercent()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read CPU utilization")
	} else {
		snap.CPUUsage = cpuPct
	}

	used, total, err := m.system.Memory()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read memory occupancy")
	} else if total > 0 {
		snap.RAMUsage = float64(used) / float64(total) * 100
	}

	if usage, ok := m.source.GPUUsage(); ok {
		snap.GPUUsage = &usage
	}
	if temp, ok := m.source.CPUTemperature(); ok {
		snap.CPUTemperature = &temp
	}

	return snap
}
