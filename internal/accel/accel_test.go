package accel

import (
	"testing"

	"codeberg.org/skarn/hwmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utilizationKeys = []string{
	"Device Utilization %",
	"GPU Activity(%)",
	"GPU Core Utilization",
	"hardwareWaitTime",
}

type fakeEntry struct {
	props    Properties
	propsErr error
	releases int
}

func (e *fakeEntry) Properties() (Properties, error) {
	if e.propsErr != nil {
		return nil, e.propsErr
	}
	return e.props, nil
}

func (e *fakeEntry) Release() {
	e.releases++
}

type fakeIterator struct {
	entries  []*fakeEntry
	pos      int
	releases int
}

func (it *fakeIterator) Next() (Entry, bool) {
	if it.pos >= len(it.entries) {
		return nil, false
	}
	entry := it.entries[it.pos]
	it.pos++
	return entry, true
}

func (it *fakeIterator) Release() {
	it.releases++
}

type fakeRegistry struct {
	iter      *fakeIterator
	err       error
	lastClass string
}

func (r *fakeRegistry) MatchingServices(class string) (Iterator, error) {
	r.lastClass = class
	if r.err != nil {
		return nil, r.err
	}
	return r.iter, nil
}

func perfEntry(stats Properties) *fakeEntry {
	return &fakeEntry{props: Properties{"PerformanceStatistics": stats}}
}

func requireAllReleasedOnce(t *testing.T, iter *fakeIterator) {
	t.Helper()
	assert.Equal(t, 1, iter.releases, "iterator must be released exactly once")
	for i, entry := range iter.entries {
		assert.Equal(t, 1, entry.releases, "entry %d must be released exactly once", i)
	}
}

func TestGPUUsageSingleDevice(t *testing.T) {
	iter := &fakeIterator{entries: []*fakeEntry{
		perfEntry(Properties{"Device Utilization %": 42.0}),
	}}
	registry := &fakeRegistry{iter: iter}

	usage, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	require.True(t, ok)
	assert.Equal(t, 42.0, usage)
	assert.Equal(t, AcceleratorClass, registry.lastClass)
	requireAllReleasedOnce(t, iter)
}

func TestGPUUsageMeanAcrossDevices(t *testing.T) {
	iter := &fakeIterator{entries: []*fakeEntry{
		perfEntry(Properties{"Device Utilization %": 30.0}),
		perfEntry(Properties{"GPU Activity(%)": int64(60)}),
	}}
	registry := &fakeRegistry{iter: iter}

	usage, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	require.True(t, ok)
	assert.InDelta(t, 45.0, usage, 1e-9)
	requireAllReleasedOnce(t, iter)
}

func TestGPUUsageFirstKeyWinsPerDevice(t *testing.T) {
	// A device exposing several candidate keys must contribute only the
	// first one, never a sum
	iter := &fakeIterator{entries: []*fakeEntry{
		perfEntry(Properties{
			"Device Utilization %": 25.0,
			"GPU Activity(%)":      90.0,
		}),
	}}
	registry := &fakeRegistry{iter: iter}

	usage, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	require.True(t, ok)
	assert.Equal(t, 25.0, usage)
}

func TestGPUUsageUnreachableEntrySkipped(t *testing.T) {
	errFactory := errors.New()
	iter := &fakeIterator{entries: []*fakeEntry{
		{propsErr: errFactory.New(ErrPropertiesFailed)}, // powered off
		perfEntry(Properties{"GPU Core Utilization": 80.0}),
	}}
	registry := &fakeRegistry{iter: iter}

	usage, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	require.True(t, ok)
	assert.Equal(t, 80.0, usage)
	requireAllReleasedOnce(t, iter)
}

func TestGPUUsageNoDevices(t *testing.T) {
	iter := &fakeIterator{}
	registry := &fakeRegistry{iter: iter}

	_, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	assert.False(t, ok, "zero devices must be unavailable, not zero")
	requireAllReleasedOnce(t, iter)
}

func TestGPUUsageNoUsableKeys(t *testing.T) {
	iter := &fakeIterator{entries: []*fakeEntry{
		perfEntry(Properties{"Alarm State": "off"}),      // present but not numeric
		{props: Properties{"IOClass": "AGXAccelerator"}}, // no statistics dictionary
	}}
	registry := &fakeRegistry{iter: iter}

	_, ok := NewEnumerator(registry, append(utilizationKeys, "Alarm State")).GPUUsage()
	assert.False(t, ok)
	requireAllReleasedOnce(t, iter)
}

func TestGPUUsageMatchingFailure(t *testing.T) {
	errFactory := errors.New()
	registry := &fakeRegistry{err: errFactory.New(ErrMatchingFailed)}

	_, ok := NewEnumerator(registry, utilizationKeys).GPUUsage()
	assert.False(t, ok)
}
