package weather

import "codeberg.org/skarn/hwmon/internal/errors"

const (
	ErrGeoLookupFailed = errors.ErrorCode("weather_geo_lookup_failed")
	ErrForecastFailed  = errors.ErrorCode("weather_forecast_failed")
	ErrBadResponse     = errors.ErrorCode("weather_bad_response")
)
