package telemetry

import "time"

// Snapshot is one instantaneous system reading. It is immutable once
// produced and replaced wholesale on each refresh; consumers must not write
// through the optional pointers.
type Snapshot struct {
	CPUUsage       float64  `json:"cpu_usage"`
	GPUUsage       *float64 `json:"gpu_usage,omitempty"`
	RAMUsage       float64  `json:"ram_usage"`
	CPUTemperature *float64 `json:"cpu_temperature,omitempty"`
}

// Source reads platform hardware telemetry. Implementations are stateless
// per call and report false when the metric is unavailable, whether the
// platform lacks the service entirely or it merely yielded nothing this
// pass; callers cannot and need not distinguish the two.
type Source interface {
	GPUUsage() (float64, bool)
	CPUTemperature() (float64, bool)
}

// SystemReader reads OS-level CPU and memory counters.
type SystemReader interface {
	CPUPercent() (float64, error)
	Memory() (used, total uint64, err error)
}

// Refresher is the surface exposed to consumers: one throttled refresh
// call plus a zero-cost accessor for the cached snapshot.
type Refresher interface {
	Refresh(now time.Time) Snapshot
	Snapshot() Snapshot
}
