package config

import (
	"os"
	"strings"

	"codeberg.org/skarn/hwmon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval        = 1
	defaultWeatherInterval = 600
)

// Default sensor key tables. Both lists are empirically derived from
// observed hardware and are overridable from the config file, since no
// vendor documents them as exhaustive.
var (
	// Accelerator utilization property names, probed in order per device.
	DefaultGPUKeys = []string{
		"Device Utilization %",
		"GPU Activity(%)",
		"GPU Core Utilization",
		"hardwareWaitTime",
	}

	// SMC temperature sensor keys covering Apple Silicon and Intel
	// hardware generations.
	DefaultTempKeys = []string{
		"Tp09", "Tp01", "Tp05", "Tp0D", "Tp0H",
		"Tp0L", "Tp0P", "Tp0X", "Tp0b",
		"TC0P", "TC0C", "TC1C", "TC0D", "TCXC",
	}
)

type Config struct {
	Interval        int      `mapstructure:"interval"`
	LogLevel        string   `mapstructure:"log_level"`
	Weather         bool     `mapstructure:"weather"`
	WeatherInterval int      `mapstructure:"weather_interval"`
	GPUKeys         []string `mapstructure:"gpu_keys"`
	TempKeys        []string `mapstructure:"temp_keys"`
	Debug           bool     `mapstructure:"debug"`
	Verbose         bool     `mapstructure:"verbose"`
}

// Load reads configuration from flags, the environment, and an optional
// TOML config file. The file path can be forced with HWMON_CONFIG,
// otherwise /etc/hwmon.toml and ./hwmon.toml are tried.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)

	flags := pflag.NewFlagSet("hwmon", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Int("interval", defaultInterval, "Seconds between telemetry refreshes")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("weather", false, "Enable the weather status lookup")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	bindings := map[string]string{
		"interval":  "interval",
		"log-level": "log_level",
		"weather":   "weather",
		"debug":     "debug",
		"verbose":   "verbose",
	}
	flags.Visit(func(f *pflag.Flag) {
		if key, ok := bindings[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("weather", false)
	v.SetDefault("weather_interval", defaultWeatherInterval)
	v.SetDefault("gpu_keys", DefaultGPUKeys)
	v.SetDefault("temp_keys", DefaultTempKeys)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := os.Getenv("HWMON_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
		return nil
	}

	v.SetConfigName("hwmon")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	return nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.Weather && c.WeatherInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.WeatherInterval)
	}

	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	for _, key := range c.TempKeys {
		if len(key) != 4 {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "temperature sensor keys must be 4 characters").WithData(key)
		}
	}

	if len(c.GPUKeys) == 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "gpu_keys must not be empty")
	}

	return nil
}
