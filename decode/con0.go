package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	asciiFieldSize        = 128
	transceiverConfigSize = 320
)

// BeamType distinguishes single-beam (amplitude only) transceivers from
// split-beam (amplitude + electrical angle) transceivers.
type BeamType int32

const (
	BeamSingle BeamType = 0
	BeamSplit  BeamType = 1
)

// TransceiverConfig is the per-channel static configuration recorded in a
// file's CON0 datagram. pulse_length_table[i] is indexed to gain_table[i]
// and sa_correction_table[i]; a ping's pulse_length selects the row.
type TransceiverConfig struct {
	ChannelID                   string
	BeamType                    BeamType
	Frequency                   float64 // Hz
	Gain                        float64 // dB
	EquivalentBeamAngle         float64 // dB re 1 steradian
	BeamwidthAlongship          float64 // degrees
	BeamwidthAthwartship        float64 // degrees
	AngleSensitivityAlongship   float64
	AngleSensitivityAthwartship float64
	AngleOffsetAlongship        float64
	AngleOffsetAthwartship      float64
	PositionX                   float64
	PositionY                   float64
	PositionZ                   float64
	DirectionX                  float64
	DirectionY                  float64
	DirectionZ                  float64
	PulseLengthTable            [5]float64 // seconds
	GainTable                   [5]float64 // dB
	SaCorrectionTable           [5]float64 // dB
}

// ConfigHeader is the CON0 datagram: one per file, describing the survey
// and every transceiver present.
type ConfigHeader struct {
	SurveyName       string
	TransectName     string
	SounderName      string
	Version          string
	TransceiverCount uint32
	Transceivers     []TransceiverConfig
}

// trimAsciiField strips a trailing NUL terminator (if present) and any
// trailing space padding from a fixed-width ASCII field.
func trimAsciiField(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " ")
}

// DecodeConfigHeader decodes a CON0 datagram body: four 128-byte ASCII
// fields, a transceiver count, then that many 320-byte TransceiverConfig
// records.
func DecodeConfigHeader(body []byte) (ConfigHeader, error) {
	const prefixSize = asciiFieldSize*4 + 4
	if len(body) < prefixSize {
		return ConfigHeader{}, fmt.Errorf("%w: CON0 body shorter than fixed prefix", ErrIo)
	}

	cfg := ConfigHeader{
		SurveyName:   trimAsciiField(body[0:128]),
		TransectName: trimAsciiField(body[128:256]),
		SounderName:  trimAsciiField(body[256:384]),
		Version:      trimAsciiField(body[384:512]),
	}
	cfg.TransceiverCount = binary.LittleEndian.Uint32(body[512:516])

	offset := prefixSize
	cfg.Transceivers = make([]TransceiverConfig, 0, cfg.TransceiverCount)
	for i := 0; i < int(cfg.TransceiverCount); i++ {
		if offset+transceiverConfigSize > len(body) {
			return cfg, fmt.Errorf("%w: CON0 transceiver_count exceeds body length", ErrIo)
		}
		tc, err := decodeTransceiverConfig(body[offset : offset+transceiverConfigSize])
		if err != nil {
			return cfg, err
		}
		cfg.Transceivers = append(cfg.Transceivers, tc)
		offset += transceiverConfigSize
	}
	return cfg, nil
}

func decodeTransceiverConfig(b []byte) (TransceiverConfig, error) {
	var raw struct {
		BeamType                     int32
		Frequency                    float32
		Gain                         float32
		EquivalentBeamAngle          float32
		BeamwidthAlongship           float32
		BeamwidthAthwartship         float32
		AngleSensitivityAlongship    float32
		AngleSensitivityAthwartship  float32
		AngleOffsetAlongship         float32
		AngleOffsetAthwartship       float32
		PosX, PosY, PosZ             float32
		DirX, DirY, DirZ             float32
		PulseLengthTable             [5]float32
		GainTable                    [5]float32
		SaCorrectionTable            [5]float32
	}

	channelID := trimAsciiField(b[0:asciiFieldSize])
	reader := bytes.NewReader(b[asciiFieldSize:])
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return TransceiverConfig{}, fmt.Errorf("%w: %v", ErrIo, err)
	}

	tc := TransceiverConfig{
		ChannelID:                    channelID,
		BeamType:                     BeamType(raw.BeamType),
		Frequency:                    float64(raw.Frequency),
		Gain:                         float64(raw.Gain),
		EquivalentBeamAngle:          float64(raw.EquivalentBeamAngle),
		BeamwidthAlongship:           float64(raw.BeamwidthAlongship),
		BeamwidthAthwartship:         float64(raw.BeamwidthAthwartship),
		AngleSensitivityAlongship:    float64(raw.AngleSensitivityAlongship),
		AngleSensitivityAthwartship:  float64(raw.AngleSensitivityAthwartship),
		AngleOffsetAlongship:         float64(raw.AngleOffsetAlongship),
		AngleOffsetAthwartship:       float64(raw.AngleOffsetAthwartship),
		PositionX:                    float64(raw.PosX),
		PositionY:                    float64(raw.PosY),
		PositionZ:                    float64(raw.PosZ),
		DirectionX:                   float64(raw.DirX),
		DirectionY:                   float64(raw.DirY),
		DirectionZ:                   float64(raw.DirZ),
	}
	for i := 0; i < 5; i++ {
		tc.PulseLengthTable[i] = float64(raw.PulseLengthTable[i])
		tc.GainTable[i] = float64(raw.GainTable[i])
		tc.SaCorrectionTable[i] = float64(raw.SaCorrectionTable[i])
	}
	return tc, nil
}
