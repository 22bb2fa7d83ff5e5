package smc

import (
	"encoding/binary"
	"math"
	"testing"

	"codeberg.org/skarn/hwmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackKey(t *testing.T) {
	assert.Equal(t, Key(0x54433050), PackKey("TC0P"))
	assert.Equal(t, Key(0x73703738), PackKey("sp78"))

	// Deterministic: same input, same key
	assert.Equal(t, PackKey("Tp09"), PackKey("Tp09"))

	// Injective over the candidate key tables
	keys := []string{
		"Tp09", "Tp01", "Tp05", "Tp0D", "Tp0H",
		"Tp0L", "Tp0P", "Tp0X", "Tp0b",
		"TC0P", "TC0C", "TC1C", "TC0D", "TCXC",
	}
	seen := make(map[Key]string)
	for _, k := range keys {
		packed := PackKey(k)
		prev, dup := seen[packed]
		require.False(t, dup, "keys %q and %q collide", prev, k)
		seen[packed] = k
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "TC0P", PackKey("TC0P").String())
	assert.Equal(t, "flt ", TypeFloat.String())
}

func TestDecodeValueSP78(t *testing.T) {
	v, ok := DecodeValue([]byte{0x19, 0x00}, TypeSP78)
	require.True(t, ok)
	assert.InDelta(t, 25.0, v, 1e-9)

	v, ok = DecodeValue([]byte{0x19, 0x80}, TypeSP78)
	require.True(t, ok)
	assert.InDelta(t, 25.5, v, 1e-9)

	// Negative fixed point: 0xFF00 is -256 as s16
	v, ok = DecodeValue([]byte{0xFF, 0x00}, TypeSP78)
	require.True(t, ok)
	assert.InDelta(t, -1.0, v, 1e-9)
}

func TestDecodeValueFloat(t *testing.T) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(42.5))

	v, ok := DecodeValue(buf[:], TypeFloat)
	require.True(t, ok)
	assert.Equal(t, 42.5, v)
}

func TestDecodeValueUnknownTypeFallback(t *testing.T) {
	unknown := PackKey("ui8 ")

	// Single-byte readings inside [0, 150) are accepted
	v, ok := DecodeValue([]byte{40}, unknown)
	require.True(t, ok)
	assert.Equal(t, 40.0, v)

	// Out of band readings are discarded, not clamped
	_, ok = DecodeValue([]byte{200}, unknown)
	assert.False(t, ok)
}

func TestDecodeValueShortBuffer(t *testing.T) {
	_, ok := DecodeValue([]byte{0x19}, TypeSP78)
	assert.False(t, ok)

	_, ok = DecodeValue([]byte{0x42, 0x2A}, TypeFloat)
	assert.False(t, ok)

	_, ok = DecodeValue(nil, PackKey("ui8 "))
	assert.False(t, ok)
}

func TestPlausibleCPUTemperature(t *testing.T) {
	assert.False(t, PlausibleCPUTemperature(15.0), "below the lower bound")
	assert.True(t, PlausibleCPUTemperature(20.0), "lower bound is inclusive")
	assert.True(t, PlausibleCPUTemperature(109.9))
	assert.False(t, PlausibleCPUTemperature(110.0), "upper bound is exclusive")
}

// scriptedKey describes how the fake service responds to one sensor key.
type scriptedKey struct {
	infoErr    error
	infoResult uint8
	info       KeyInfo
	readErr    error
	readResult uint8
	bytes      [32]byte
}

type fakeConn struct {
	t          *testing.T
	keys       map[Key]scriptedKey
	calls      int
	closeCount int
}

func (f *fakeConn) Call(input, output *KeyData) error {
	f.calls++
	*output = KeyData{}

	sk, ok := f.keys[input.Key]
	if !ok {
		// Key unknown to the service: protocol-level failure
		output.Result = 0x84
		return nil
	}

	switch input.Data8 {
	case cmdReadKeyInfo:
		if sk.infoErr != nil {
			return sk.infoErr
		}
		output.Result = sk.infoResult
		output.KeyInfo = sk.info
	case cmdReadBytes:
		// The second phase must carry the first phase's metadata verbatim
		assert.Equal(f.t, sk.info, input.KeyInfo, "KeyInfo not round-tripped for key %v", input.Key)
		if sk.readErr != nil {
			return sk.readErr
		}
		output.Result = sk.readResult
		output.Bytes = sk.bytes
	default:
		f.t.Fatalf("unexpected command %d", input.Data8)
	}

	return nil
}

func (f *fakeConn) Close() error {
	f.closeCount++
	return nil
}

func sp78Key(celsius float64) scriptedKey {
	var b [32]byte
	binary.BigEndian.PutUint16(b[:2], uint16(int16(celsius*256)))

	return scriptedKey{
		info:  KeyInfo{DataSize: 2, DataType: TypeSP78, DataAttributes: 0xC0},
		bytes: b,
	}
}

func dialFake(f *fakeConn) DialFunc {
	return func() (Conn, error) { return f, nil }
}

func TestCPUTemperatureMean(t *testing.T) {
	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{
		PackKey("Tp09"): sp78Key(60.0),
		PackKey("TC0P"): sp78Key(70.0),
		PackKey("TC0D"): sp78Key(80.0),
	}}

	client := NewClient(dialFake(conn), []string{"Tp09", "TC0P", "TC0D"})

	v, ok := client.CPUTemperature()
	require.True(t, ok)
	assert.InDelta(t, 70.0, v, 1e-9)
	assert.Equal(t, 1, conn.closeCount, "session must be closed exactly once")
}

func TestCPUTemperatureNoReadings(t *testing.T) {
	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{}}
	client := NewClient(dialFake(conn), []string{"Tp09", "TC0P"})

	_, ok := client.CPUTemperature()
	assert.False(t, ok, "zero accepted readings must be unavailable, not 0.0")
	assert.Equal(t, 1, conn.closeCount)
}

func TestCPUTemperatureImplausibleDiscarded(t *testing.T) {
	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{
		PackKey("Tp09"): sp78Key(15.0),  // below band
		PackKey("TC0P"): sp78Key(109.9), // accepted
		PackKey("TC0D"): sp78Key(110.0), // at exclusive upper bound
	}}
	client := NewClient(dialFake(conn), []string{"Tp09", "TC0P", "TC0D"})

	v, ok := client.CPUTemperature()
	require.True(t, ok)
	assert.InDelta(t, 109.9, v, 1e-9)
}

func TestCPUTemperatureSkipsFailedKeys(t *testing.T) {
	errFactory := errors.New()
	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{
		PackKey("Tp01"): {infoErr: errFactory.New(ErrCallFailed)},
		PackKey("Tp05"): {infoResult: 0x84},
		PackKey("TC0P"): sp78Key(55.0),
	}}

	// First three candidates fail at the info phase (one is absent
	// entirely), the fourth succeeds
	client := NewClient(dialFake(conn), []string{"Tp09", "Tp01", "Tp05", "TC0P"})

	v, ok := client.CPUTemperature()
	require.True(t, ok)
	assert.InDelta(t, 55.0, v, 1e-9)
	assert.Equal(t, 1, conn.closeCount, "failed keys must not leak the session")
}

func TestCPUTemperatureReadPhaseFailure(t *testing.T) {
	errFactory := errors.New()
	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{
		PackKey("Tp09"): {
			info:    KeyInfo{DataSize: 2, DataType: TypeSP78},
			readErr: errFactory.New(ErrCallFailed),
		},
		PackKey("TC0P"): sp78Key(48.0),
	}}
	client := NewClient(dialFake(conn), []string{"Tp09", "TC0P"})

	v, ok := client.CPUTemperature()
	require.True(t, ok)
	assert.InDelta(t, 48.0, v, 1e-9)
}

func TestCPUTemperatureDialFailure(t *testing.T) {
	errFactory := errors.New()
	dial := func() (Conn, error) {
		return nil, errFactory.New(ErrServiceNotFound)
	}
	client := NewClient(dial, []string{"TC0P"})

	_, ok := client.CPUTemperature()
	assert.False(t, ok)
}

func TestCPUTemperatureUnknownWireType(t *testing.T) {
	var b [32]byte
	b[0] = 47 // plausible single-byte reading under an undocumented type

	conn := &fakeConn{t: t, keys: map[Key]scriptedKey{
		PackKey("TC0P"): {
			info:  KeyInfo{DataSize: 1, DataType: PackKey("ui8 ")},
			bytes: b,
		},
	}}
	client := NewClient(dialFake(conn), []string{"TC0P"})

	v, ok := client.CPUTemperature()
	require.True(t, ok)
	assert.Equal(t, 47.0, v)
}
