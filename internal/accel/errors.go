package accel

import "codeberg.org/skarn/hwmon/internal/errors"

const (
	// Enumeration errors
	ErrMatchingFailed   = errors.ErrorCode("accel_matching_failed")
	ErrPropertiesFailed = errors.ErrorCode("accel_properties_failed")

	// Platform errors
	ErrUnsupportedPlatform = errors.ErrorCode("accel_unsupported_platform")
)
