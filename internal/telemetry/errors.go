package telemetry

import "codeberg.org/skarn/hwmon/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig   = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidInterval = errors.ErrorCode("telemetry_invalid_interval")

	// Collection errors
	ErrCPUReadFailed    = errors.ErrorCode("telemetry_cpu_read_failed")
	ErrMemoryReadFailed = errors.ErrorCode("telemetry_memory_read_failed")
)
