//go:build darwin && cgo

package accel

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation

#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/IOKitLib.h>

typedef struct {
	char   key[128];
	double value;
} accel_stat_t;

// Fills stats with the numeric entries of the service's
// PerformanceStatistics sub-dictionary. Returns the count, -1 when the
// entry's properties are unreadable (e.g. powered off), -2 when it carries
// no such dictionary.
static int accel_perf_stats(io_registry_entry_t entry, accel_stat_t *stats, int cap) {
	CFMutableDictionaryRef props = NULL;
	if (IORegistryEntryCreateCFProperties(entry, &props, kCFAllocatorDefault, 0) != KERN_SUCCESS || props == NULL) {
		return -1;
	}

	const void *perf = NULL;
	if (!CFDictionaryGetValueIfPresent(props, CFSTR("PerformanceStatistics"), &perf) ||
	    CFGetTypeID((CFTypeRef)perf) != CFDictionaryGetTypeID()) {
		CFRelease(props);
		return -2;
	}

	CFDictionaryRef dict = (CFDictionaryRef)perf;
	CFIndex n = CFDictionaryGetCount(dict);
	const void **keys = malloc(n * sizeof(void *));
	const void **values = malloc(n * sizeof(void *));
	CFDictionaryGetKeysAndValues(dict, keys, values);

	int out = 0;
	for (CFIndex i = 0; i < n && out < cap; i++) {
		if (CFGetTypeID((CFTypeRef)keys[i]) != CFStringGetTypeID() ||
		    CFGetTypeID((CFTypeRef)values[i]) != CFNumberGetTypeID()) {
			continue;
		}
		double v = 0;
		if (!CFNumberGetValue((CFNumberRef)values[i], kCFNumberDoubleType, &v)) {
			continue;
		}
		if (!CFStringGetCString((CFStringRef)keys[i], stats[out].key, sizeof(stats[out].key), kCFStringEncodingUTF8)) {
			continue;
		}
		stats[out].value = v;
		out++;
	}

	free(keys);
	free(values);
	CFRelease(props);
	return out;
}
*/
import "C"

import (
	"unsafe"

	"codeberg.org/skarn/hwmon/internal/errors"
)

// Large enough for every PerformanceStatistics dictionary observed so far.
const perfStatsCap = 256

type systemRegistry struct{}

// SystemRegistry returns the live IOKit service registry.
func SystemRegistry() Registry {
	return systemRegistry{}
}

func (systemRegistry) MatchingServices(class string) (Iterator, error) {
	errFactory := errors.New()

	cclass := C.CString(class)
	defer C.free(unsafe.Pointer(cclass))

	var iter C.io_iterator_t
	if kr := C.IOServiceGetMatchingServices(0, C.IOServiceMatching(cclass), &iter); kr != C.KERN_SUCCESS {
		return nil, errFactory.WithData(ErrMatchingFailed, int(kr))
	}

	return &darwinIterator{iter: iter}, nil
}

type darwinIterator struct {
	iter C.io_iterator_t
}

func (it *darwinIterator) Next() (Entry, bool) {
	obj := C.IOIteratorNext(it.iter)
	if obj == 0 {
		return nil, false
	}
	return &darwinEntry{entry: C.io_registry_entry_t(obj)}, true
}

func (it *darwinIterator) Release() {
	C.IOObjectRelease(C.io_object_t(it.iter))
}

type darwinEntry struct {
	entry C.io_registry_entry_t
}

func (e *darwinEntry) Properties() (Properties, error) {
	errFactory := errors.New()

	stats := make([]C.accel_stat_t, perfStatsCap)
	n := C.accel_perf_stats(e.entry, &stats[0], C.int(len(stats)))
	if n < 0 {
		return nil, errFactory.WithData(ErrPropertiesFailed, int(n))
	}

	perf := make(Properties, int(n))
	for i := 0; i < int(n); i++ {
		perf[C.GoString(&stats[i].key[0])] = float64(stats[i].value)
	}

	return Properties{performanceStatisticsKey: perf}, nil
}

func (e *darwinEntry) Release() {
	C.IOObjectRelease(C.io_object_t(e.entry))
}
