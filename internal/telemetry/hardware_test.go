package telemetry

import (
	"encoding/binary"
	"testing"

	"codeberg.org/skarn/hwmon/internal/accel"
	"codeberg.org/skarn/hwmon/internal/smc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEntry struct {
	props accel.Properties
}

func (e *staticEntry) Properties() (accel.Properties, error) { return e.props, nil }
func (e *staticEntry) Release()                              {}

type staticIterator struct {
	entries []accel.Entry
	pos     int
}

func (it *staticIterator) Next() (accel.Entry, bool) {
	if it.pos >= len(it.entries) {
		return nil, false
	}
	entry := it.entries[it.pos]
	it.pos++
	return entry, true
}

func (it *staticIterator) Release() {}

type staticRegistry struct {
	entries []accel.Entry
}

func (r *staticRegistry) MatchingServices(string) (accel.Iterator, error) {
	return &staticIterator{entries: r.entries}, nil
}

// sp78Conn answers every key with the same sp78 reading: the info phase
// first, then the payload.
type sp78Conn struct {
	celsius float64
	phase   map[smc.Key]int
}

func (c *sp78Conn) Call(input, output *smc.KeyData) error {
	if c.phase == nil {
		c.phase = make(map[smc.Key]int)
	}
	*output = smc.KeyData{}

	c.phase[input.Key]++
	if c.phase[input.Key]%2 == 1 {
		output.KeyInfo = smc.KeyInfo{DataSize: 2, DataType: smc.TypeSP78}
	} else {
		binary.BigEndian.PutUint16(output.Bytes[:2], uint16(int16(c.celsius*256)))
	}

	return nil
}

func (c *sp78Conn) Close() error { return nil }

func TestHardwareSourceComposition(t *testing.T) {
	registry := &staticRegistry{entries: []accel.Entry{
		&staticEntry{props: accel.Properties{
			"PerformanceStatistics": accel.Properties{"Device Utilization %": 37.0},
		}},
	}}
	dial := func() (smc.Conn, error) {
		return &sp78Conn{celsius: 58.25}, nil
	}

	source := NewHardwareSource(registry, dial, []string{"Device Utilization %"}, []string{"TC0P"})

	usage, ok := source.GPUUsage()
	require.True(t, ok)
	assert.Equal(t, 37.0, usage)

	temp, ok := source.CPUTemperature()
	require.True(t, ok)
	assert.InDelta(t, 58.25, temp, 1e-9)
}
