package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/skarn/hwmon/internal/config"
	"codeberg.org/skarn/hwmon/internal/logger"
	"codeberg.org/skarn/hwmon/internal/telemetry"
	"codeberg.org/skarn/hwmon/internal/weather"
)

var (
	cfg     *config.Config
	monitor *telemetry.Monitor
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		logger.SetLogLevel(levelFromConfig(cfg.LogLevel))
	}
	logger.Debug().Msg("Config loaded")

	monitor, err = telemetry.New(telemetry.Config{
		Interval: time.Duration(cfg.Interval) * time.Second,
		Source:   telemetry.NewPlatformSource(cfg),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	loop(ctx)
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context) {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updates := make(chan *weather.Info, 1)
	if cfg.Weather {
		go watchWeather(ctx, time.Duration(cfg.WeatherInterval)*time.Second, updates)
	}

	var conditions *weather.Info

	for {
		select {
		case <-ctx.Done():
			return
		case info := <-updates:
			conditions = info
		case <-ticker.C:
			snap := monitor.Refresh(time.Now())
			logSnapshot(snap, conditions)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func watchWeather(ctx context.Context, interval time.Duration, updates chan<- *weather.Info) {
	client := weather.NewClient()

	for {
		info, err := client.Fetch(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Weather lookup failed")
		} else {
			select {
			case updates <- info:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

func logSnapshot(snap telemetry.Snapshot, conditions *weather.Info) {
	event := logger.Info().
		Str("cpu", fmt.Sprintf("%.1f%%", snap.CPUUsage)).
		Str("ram", fmt.Sprintf("%.1f%%", snap.RAMUsage)).
		Str("gpu", formatOptional(snap.GPUUsage, "%.1f%%")).
		Str("cpu_temp", formatOptional(snap.CPUTemperature, "%.1f°C"))

	if conditions != nil {
		event = event.Str("weather", fmt.Sprintf("%s %s %.0f°F",
			conditions.Icon, conditions.Description, conditions.TemperatureF))
	}

	event.Msg("System status")
}

// formatOptional renders an absent metric as an explicit placeholder.
func formatOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

func levelFromConfig(level string) logger.LogLevel {
	switch config.LogLevel(level) {
	case config.LogLevelDebug:
		return logger.DebugLevel
	case config.LogLevelWarning:
		return logger.WarnLevel
	case config.LogLevelError:
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
