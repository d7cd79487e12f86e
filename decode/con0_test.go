package decode_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echosounder/go-ek60/decode"
)

// asciiField returns a 128-byte NUL-padded ASCII field.
func asciiField(s string) []byte {
	out := make([]byte, 128)
	copy(out, s)
	return out
}

func buildTransceiverConfig(channelID string, beamType int32, frequency float32) []byte {
	var buf bytes.Buffer
	buf.Write(asciiField(channelID))

	fields := []any{
		beamType,        // BeamType
		frequency,       // Frequency
		float32(20),     // Gain
		float32(-17.0),  // EquivalentBeamAngle
		float32(7.1),    // BeamwidthAlongship
		float32(7.1),    // BeamwidthAthwartship
		float32(21.9),   // AngleSensitivityAlongship
		float32(21.9),   // AngleSensitivityAthwartship
		float32(0.0),    // AngleOffsetAlongship
		float32(0.0),    // AngleOffsetAthwartship
		float32(0), float32(0), float32(0), // PosX, PosY, PosZ
		float32(0), float32(0), float32(1), // DirX, DirY, DirZ
		[5]float32{0.000256, 0.000512, 0.001024, 0, 0}, // PulseLengthTable
		[5]float32{0, -1, -2, 0, 0},                    // GainTable
		[5]float32{0, 0.1, 0.2, 0, 0},                  // SaCorrectionTable
	}
	for _, f := range fields {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}

	// pad out to the fixed 320-byte transceiver config record size.
	out := buf.Bytes()
	if len(out) < 320 {
		pad := make([]byte, 320-len(out))
		out = append(out, pad...)
	}
	return out
}

func TestDecodeConfigHeader(t *testing.T) {
	var body bytes.Buffer
	body.Write(asciiField("SurveyX"))
	body.Write(asciiField("TransectY"))
	body.Write(asciiField("EK60"))
	body.Write(asciiField("2.0"))

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], 2)
	body.Write(count[:])

	body.Write(buildTransceiverConfig("ES38B", int32(decode.BeamSplit), 38000))
	body.Write(buildTransceiverConfig("ES120-7C", int32(decode.BeamSingle), 120000))

	cfg, err := decode.DecodeConfigHeader(body.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, "SurveyX", cfg.SurveyName)
	assert.Equal(t, "TransectY", cfg.TransectName)
	assert.Equal(t, "EK60", cfg.SounderName)
	assert.Equal(t, "2.0", cfg.Version)
	assert.Equal(t, uint32(2), cfg.TransceiverCount)
	assert.Len(t, cfg.Transceivers, 2)

	first := cfg.Transceivers[0]
	assert.Equal(t, "ES38B", first.ChannelID)
	assert.Equal(t, decode.BeamSplit, first.BeamType)
	assert.InDelta(t, 38000, first.Frequency, 1e-6)
	assert.InDelta(t, 0.000512, first.PulseLengthTable[1], 1e-9)
	assert.InDelta(t, -2, first.GainTable[2], 1e-9)
	assert.InDelta(t, 0.1, first.SaCorrectionTable[1], 1e-9)

	second := cfg.Transceivers[1]
	assert.Equal(t, "ES120-7C", second.ChannelID)
	assert.Equal(t, decode.BeamSingle, second.BeamType)
}

func TestDecodeConfigHeaderTruncatedPrefix(t *testing.T) {
	_, err := decode.DecodeConfigHeader(make([]byte, 10))
	assert.ErrorIs(t, err, decode.ErrIo)
}

func TestDecodeConfigHeaderTruncatedTransceiver(t *testing.T) {
	var body bytes.Buffer
	body.Write(asciiField("SurveyX"))
	body.Write(asciiField("TransectY"))
	body.Write(asciiField("EK60"))
	body.Write(asciiField("2.0"))
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], 1)
	body.Write(count[:])
	// declares one transceiver but supplies no transceiver bytes.

	_, err := decode.DecodeConfigHeader(body.Bytes())
	assert.ErrorIs(t, err, decode.ErrIo)
}
