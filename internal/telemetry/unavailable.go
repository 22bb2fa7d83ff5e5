package telemetry

// unavailableSource is the constant fallback for platforms without
// accelerator or sensor services. The aggregator's assembly logic never
// branches on platform identity; it just sees absent optionals.
type unavailableSource struct{}

// Unavailable returns a Source whose metrics are always absent.
func Unavailable() Source {
	return unavailableSource{}
}

func (unavailableSource) GPUUsage() (float64, bool)       { return 0, false }
func (unavailableSource) CPUTemperature() (float64, bool) { return 0, false }
