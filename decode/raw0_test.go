package decode_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echosounder/go-ek60/decode"
)

func buildRaw0Body(mode uint16, count uint32, power []int16, angle []uint16) []byte {
	var buf bytes.Buffer
	hdr := []any{
		uint16(1),           // Channel
		mode,                // Mode
		float32(10),         // TransducerDepth
		float32(38000),      // Frequency
		float32(2000),       // TransmitPower
		float32(0.001024),   // PulseLength
		float32(2425),       // Bandwidth
		float32(0.000190425),// SampleInterval
		float32(1497),       // SoundVelocity
		float32(0.00986),    // AbsorptionCoefficient
		float32(0),          // Heave
		float32(0),          // TxRoll
		float32(0),          // TxPitch
		float32(10),         // Temperature
		float32(0),          // RxRoll
		float32(0),          // RxPitch
		float32(0),          // Heading
		uint16(0),           // TransmitMode
		[6]byte{},           // Spare
		uint32(0),           // SampleOffset
		count,               // Count
	}
	for _, f := range hdr {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	if power != nil {
		_ = binary.Write(&buf, binary.LittleEndian, power)
	}
	if angle != nil {
		_ = binary.Write(&buf, binary.LittleEndian, angle)
	}
	return buf.Bytes()
}

func TestDecodeRaw0PowerOnly(t *testing.T) {
	power := []int16{100, 200, -300, 400}
	body := buildRaw0Body(0x1, 4, power, nil)

	sample, err := decode.DecodeRaw0(body, decode.NewInstant(0))
	assert.NoError(t, err)
	assert.Equal(t, uint16(1), sample.Channel)
	assert.Equal(t, uint32(4), sample.SampleCount)
	assert.Equal(t, power, sample.IndexedPower)
	assert.Nil(t, sample.IndexedAngle)
	assert.InDelta(t, 38000, sample.Frequency, 1e-3)
	assert.InDelta(t, 0.001024, sample.PulseLength, 1e-9)
}

func TestDecodeRaw0PowerAndAngle(t *testing.T) {
	power := []int16{1, 2, 3}
	angle := []uint16{0x0102, 0xFFFE, 0x7F80}
	body := buildRaw0Body(0x3, 3, power, angle)

	sample, err := decode.DecodeRaw0(body, decode.NewInstant(0))
	assert.NoError(t, err)
	assert.Equal(t, power, sample.IndexedPower)
	assert.Equal(t, angle, sample.IndexedAngle)
}

func TestDecodeRaw0NoSampleArrays(t *testing.T) {
	body := buildRaw0Body(0x0, 0, nil, nil)

	sample, err := decode.DecodeRaw0(body, decode.NewInstant(0))
	assert.NoError(t, err)
	assert.Nil(t, sample.IndexedPower)
	assert.Nil(t, sample.IndexedAngle)
	assert.Equal(t, uint32(0), sample.SampleCount)
}

func TestDecodeRaw0TruncatedHeader(t *testing.T) {
	_, err := decode.DecodeRaw0(make([]byte, 10), decode.NewInstant(0))
	assert.ErrorIs(t, err, decode.ErrInvalidMode)
}

func TestDecodeRaw0ModeCountExceedsBody(t *testing.T) {
	// declares 10 power samples but the body only carries the fixed header.
	body := buildRaw0Body(0x1, 10, nil, nil)
	_, err := decode.DecodeRaw0(body, decode.NewInstant(0))
	assert.ErrorIs(t, err, decode.ErrInvalidMode)
}
