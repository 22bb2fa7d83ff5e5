// Package smc implements the keyed sensor query protocol exposed by the
// platform's hardware-management service. Sensors are addressed by packed
// four-character keys and read with a two-phase key-info/key-read handshake;
// raw payloads are decoded according to the wire type the service declares
// for the key at query time.
package smc

import (
	"encoding/binary"
	"math"

	"codeberg.org/skarn/hwmon/internal/logger"
)

// Key identifies one sensor or property within the management protocol.
type Key uint32

// PackKey packs a 4-character ASCII identifier into its on-wire key, most
// significant byte first.
func PackKey(s string) Key {
	return Key(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3]))
}

// String returns the unpacked 4-character form of the key.
func (k Key) String() string {
	return string([]byte{byte(k >> 24), byte(k >> 16), byte(k >> 8), byte(k)})
}

// Known wire types. Hardware generations differ in how they encode
// temperature payloads, so the type is read per key, never assumed.
var (
	// TypeSP78 is signed 7.8 fixed point: big-endian s16 divided by 256.
	TypeSP78 = PackKey("sp78")
	// TypeFloat is a big-endian IEEE 754 single.
	TypeFloat = PackKey("flt ")
)

const (
	cmdReadKeyInfo uint8 = 9
	cmdReadBytes   uint8 = 5

	// Payload size sufficient for every wire type currently decoded.
	readBufferSize = 32

	// Plausible CPU temperature band in degrees Celsius. Readings outside
	// it are sensor noise or keys inapplicable to this hardware revision.
	tempPlausibleMin = 20.0
	tempPlausibleMax = 110.0

	// Accepted band for the unknown-type single-byte fallback.
	byteFallbackMax = 150.0
)

// KeyInfo is the service's type metadata for a key, returned by the first
// protocol phase. It must be passed back verbatim in the second phase; the
// service associates it with the key at query time.
type KeyInfo struct {
	DataSize       uint32
	DataType       Key
	DataAttributes uint8
}

// KeyData is the fixed-layout record exchanged with the management service
// in both protocol phases. Field order and widths mirror the platform ABI.
type KeyData struct {
	Key        Key
	Vers       [6]byte
	PLimitData [16]byte
	KeyInfo    KeyInfo
	Result     uint8
	Status     uint8
	Data8      uint8
	Data32     uint32
	Bytes      [readBufferSize]byte
}

// Conn is one open session against the management service. Call performs a
// single synchronous struct I/O exchange. Close must be called exactly once.
type Conn interface {
	Call(input, output *KeyData) error
	Close() error
}

// DialFunc opens a session with the platform management service. It fails
// when the service is absent, unsupported, or permission is denied.
type DialFunc func() (Conn, error)

// DecodeValue decodes a raw sensor payload according to its declared wire
// type. Unknown types fall back to reading the first byte as an unsigned
// integer, accepted only within [0, 150); some undocumented key types still
// carry plausible single-byte readings.
func DecodeValue(data []byte, dataType Key) (float64, bool) {
	switch dataType {
	case TypeSP78:
		if len(data) < 2 {
			return 0, false
		}
		raw := int16(binary.BigEndian.Uint16(data[:2]))
		return float64(raw) / 256.0, true
	case TypeFloat:
		if len(data) < 4 {
			return 0, false
		}
		bits := binary.BigEndian.Uint32(data[:4])
		return float64(math.Float32frombits(bits)), true
	default:
		if len(data) == 0 {
			return 0, false
		}
		v := float64(data[0])
		if v < byteFallbackMax {
			return v, true
		}
		return 0, false
	}
}

// PlausibleCPUTemperature reports whether a decoded reading lies in the
// accepted CPU temperature band, [20, 110) degrees Celsius.
func PlausibleCPUTemperature(v float64) bool {
	return v >= tempPlausibleMin && v < tempPlausibleMax
}

// Client reads CPU temperature sensors over the management service. It is
// stateless per call: each query opens a session, probes the candidate keys
// in priority order, and closes the session before returning.
type Client struct {
	dial DialFunc
	keys []string
}

func NewClient(dial DialFunc, keys []string) *Client {
	return &Client{
		dial: dial,
		keys: keys,
	}
}

// CPUTemperature returns the arithmetic mean of all candidate sensor keys
// that decoded to a plausible reading, or false when the management service
// could not be reached or no key yielded one. A failing key is skipped, not
// fatal; retry cadence belongs to the caller's refresh interval.
func (c *Client) CPUTemperature() (float64, bool) {
	conn, err := c.dial()
	if err != nil {
		logger.Debug().Err(err).Msg("Management service unavailable")
		return 0, false
	}
	defer conn.Close()

	var sum float64
	var count int

	for _, key := range c.keys {
		v, ok := readKey(conn, PackKey(key))
		if !ok {
			continue
		}
		if !PlausibleCPUTemperature(v) {
			logger.Debug().Str("key", key).Float64("value", v).Msg("Discarding implausible reading")
			continue
		}
		sum += v
		count++
	}

	if count == 0 {
		return 0, false
	}

	return sum / float64(count), true
}

// readKey performs the two-phase handshake for one key: read the key's type
// metadata, then read its payload carrying that metadata back unchanged, and
// decode using the wire type from the first phase.
func readKey(conn Conn, key Key) (float64, bool) {
	input := KeyData{Key: key, Data8: cmdReadKeyInfo}
	var output KeyData

	if err := conn.Call(&input, &output); err != nil || output.Result != 0 {
		return 0, false
	}
	info := output.KeyInfo

	input.KeyInfo = info
	input.Data8 = cmdReadBytes

	if err := conn.Call(&input, &output); err != nil || output.Result != 0 {
		return 0, false
	}

	return DecodeValue(output.Bytes[:], info.DataType)
}
