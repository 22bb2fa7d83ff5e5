package config

// Provider defines the interface for accessing configuration values.
// All configuration values are immutable after initial loading.
type Provider interface {
	// GetInterval returns the telemetry refresh interval in seconds
	GetInterval() int

	// GetLogLevel returns the configured logging level
	GetLogLevel() string

	// IsWeatherEnabled returns whether the weather lookup is enabled
	IsWeatherEnabled() bool

	// GetGPUKeys returns the accelerator utilization key priority table
	GetGPUKeys() []string

	// GetTempKeys returns the temperature sensor key priority table
	GetTempKeys() []string
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

func (c *Config) GetInterval() int       { return c.Interval }
func (c *Config) GetLogLevel() string    { return c.LogLevel }
func (c *Config) IsWeatherEnabled() bool { return c.Weather }
func (c *Config) GetGPUKeys() []string   { return c.GPUKeys }
func (c *Config) GetTempKeys() []string  { return c.TempKeys }
