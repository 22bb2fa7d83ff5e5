package smc

import "codeberg.org/skarn/hwmon/internal/errors"

const (
	// Session errors
	ErrServiceNotFound = errors.ErrorCode("smc_service_not_found")
	ErrOpenFailed      = errors.ErrorCode("smc_open_failed")
	ErrCloseFailed     = errors.ErrorCode("smc_close_failed")

	// Query errors
	ErrCallFailed = errors.ErrorCode("smc_call_failed")

	// Platform errors
	ErrUnsupportedPlatform = errors.ErrorCode("smc_unsupported_platform")
)
