// Package accel discovers GPU-class services exposed by the platform and
// derives a single utilization percentage from their live performance
// properties.
package accel

import (
	"codeberg.org/skarn/hwmon/internal/logger"
)

// AcceleratorClass is the service class matched during enumeration.
const AcceleratorClass = "IOAccelerator"

// performanceStatisticsKey names the nested sub-dictionary holding a
// device's live performance counters.
const performanceStatisticsKey = "PerformanceStatistics"

// Properties is one service entry's property dictionary. Nested
// dictionaries appear as Properties values. It is scoped to the processing
// of a single entry and never retained.
type Properties map[string]any

// Entry is one matched service. Release must be called exactly once,
// regardless of whether the entry's properties were readable.
type Entry interface {
	// Properties reads the entry's live property dictionary. It fails for
	// entries that are matched but not currently reachable, e.g. powered
	// off.
	Properties() (Properties, error)
	Release()
}

// Iterator walks matched service entries. Release must be called exactly
// once when iteration ends, on every path.
type Iterator interface {
	Next() (Entry, bool)
	Release()
}

// Registry is the platform's service-discovery mechanism, keyed by class
// name.
type Registry interface {
	MatchingServices(class string) (Iterator, error)
}

// Enumerator computes accelerator utilization across all GPU-class
// services. Stateless per call.
type Enumerator struct {
	registry Registry
	keys     []string
}

// NewEnumerator returns an enumerator probing the given utilization
// property names in priority order. Distinct vendors expose utilization
// under different names, so the table is caller-supplied.
func NewEnumerator(registry Registry, keys []string) *Enumerator {
	return &Enumerator{
		registry: registry,
		keys:     keys,
	}
}

// GPUUsage returns the arithmetic mean utilization over every device that
// yielded a value, or false when no device did. An unreachable entry
// contributes nothing and does not abort the scan.
func (e *Enumerator) GPUUsage() (float64, bool) {
	iter, err := e.registry.MatchingServices(AcceleratorClass)
	if err != nil {
		logger.Debug().Err(err).Msg("Accelerator enumeration unavailable")
		return 0, false
	}
	defer iter.Release()

	var total float64
	var count int

	for {
		entry, ok := iter.Next()
		if !ok {
			break
		}
		if usage, ok := e.entryUsage(entry); ok {
			total += usage
			count++
		}
	}

	if count == 0 {
		return 0, false
	}

	return total / float64(count), true
}

// entryUsage extracts one device's utilization: the first present and
// decodable key from the priority table, never a sum of several.
func (e *Enumerator) entryUsage(entry Entry) (float64, bool) {
	defer entry.Release()

	props, err := entry.Properties()
	if err != nil {
		return 0, false
	}

	perf, ok := props[performanceStatisticsKey].(Properties)
	if !ok {
		return 0, false
	}

	for _, key := range e.keys {
		value, ok := perf[key]
		if !ok {
			continue
		}
		if usage, ok := asNumber(value); ok {
			return usage, true
		}
	}

	return 0, false
}

// asNumber coerces the typed values a property dictionary can carry.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
