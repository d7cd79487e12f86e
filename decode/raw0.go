package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TransmitMode classifies a ping's transmit_mode field.
type TransmitMode int

const (
	TransmitActive  TransmitMode = 0
	TransmitPassive TransmitMode = 1
	TransmitTest    TransmitMode = 2
	TransmitUnknown TransmitMode = -1
)

func transmitModeFromRaw(v uint16) TransmitMode {
	switch v {
	case 0:
		return TransmitActive
	case 1:
		return TransmitPassive
	case 2:
		return TransmitTest
	default:
		return TransmitUnknown
	}
}

// rawFixedHeaderSize is the byte width of the RAW0 body up to, but not
// including, the sample arrays; the sample_offset and count fields are the
// last eight bytes it covers (spec section 4.3).
const rawFixedHeaderSize = 80

// RawSample is one channel's ping: the RAW0 datagram's fixed header plus
// whichever of its power/angle sample arrays the mode byte declares present.
type RawSample struct {
	Time                   Instant
	Channel                uint16 // 1-based index into the file's ConfigHeader.Transceivers
	TransducerDepth        float64
	Frequency              float64
	TransmitPower          float64
	PulseLength            float64
	Bandwidth              float64
	SampleInterval         float64
	SoundVelocity          float64
	AbsorptionCoefficient  float64
	Heave                  float64
	TxRoll                 float64
	TxPitch                float64
	Temperature            float64
	RxRoll                 float64
	RxPitch                float64
	Heading                float64
	TransmitMode           TransmitMode
	SampleOffset           uint32
	SampleCount            uint32
	IndexedPower           []int16  // nil when mode bit 0 is unset
	IndexedAngle           []uint16 // nil when mode bit 1 is unset (packed along/athwart bytes)
}

// DecodeRaw0 decodes a RAW0 datagram body. The mode field's low two bits
// select which sample arrays follow the fixed header: bit 0 for indexed
// power, bit 1 for packed indexed angle.
func DecodeRaw0(body []byte, t Instant) (RawSample, error) {
	if len(body) < rawFixedHeaderSize {
		return RawSample{}, fmt.Errorf("%w: RAW0 body shorter than fixed header", ErrInvalidMode)
	}

	var hdr struct {
		Channel                uint16
		Mode                   uint16
		TransducerDepth        float32
		Frequency              float32
		TransmitPower          float32
		PulseLength            float32
		Bandwidth              float32
		SampleInterval         float32
		SoundVelocity          float32
		AbsorptionCoefficient  float32
		Heave                  float32
		TxRoll                 float32
		TxPitch                float32
		Temperature            float32
		RxRoll                 float32
		RxPitch                float32
		Heading                float32
		TransmitMode           uint16
		Spare                  [6]byte
		SampleOffset           uint32
		Count                  uint32
	}

	reader := bytes.NewReader(body)
	if err := binary.Read(reader, binary.LittleEndian, &hdr); err != nil {
		return RawSample{}, fmt.Errorf("%w: %v", ErrIo, err)
	}

	hasPower := hdr.Mode&0x1 != 0
	hasAngle := hdr.Mode&0x2 != 0

	expected := rawFixedHeaderSize
	if hasPower {
		expected += int(hdr.Count) * 2
	}
	if hasAngle {
		expected += int(hdr.Count) * 2
	}
	if len(body) < expected {
		return RawSample{}, fmt.Errorf("%w: mode/count declare more samples than the body holds", ErrInvalidMode)
	}

	raw := RawSample{
		Time:                  t,
		Channel:               hdr.Channel,
		TransducerDepth:       float64(hdr.TransducerDepth),
		Frequency:             float64(hdr.Frequency),
		TransmitPower:         float64(hdr.TransmitPower),
		PulseLength:           float64(hdr.PulseLength),
		Bandwidth:             float64(hdr.Bandwidth),
		SampleInterval:        float64(hdr.SampleInterval),
		SoundVelocity:         float64(hdr.SoundVelocity),
		AbsorptionCoefficient: float64(hdr.AbsorptionCoefficient),
		Heave:                 float64(hdr.Heave),
		TxRoll:                float64(hdr.TxRoll),
		TxPitch:               float64(hdr.TxPitch),
		Temperature:           float64(hdr.Temperature),
		RxRoll:                float64(hdr.RxRoll),
		RxPitch:               float64(hdr.RxPitch),
		Heading:               float64(hdr.Heading),
		TransmitMode:          transmitModeFromRaw(hdr.TransmitMode),
		SampleOffset:          hdr.SampleOffset,
		SampleCount:           hdr.Count,
	}

	if hasPower {
		power := make([]int16, hdr.Count)
		if err := binary.Read(reader, binary.LittleEndian, &power); err != nil {
			return RawSample{}, fmt.Errorf("%w: %v", ErrIo, err)
		}
		raw.IndexedPower = power
	}
	if hasAngle {
		angle := make([]uint16, hdr.Count)
		if err := binary.Read(reader, binary.LittleEndian, &angle); err != nil {
			return RawSample{}, fmt.Errorf("%w: %v", ErrIo, err)
		}
		raw.IndexedAngle = angle
	}

	return raw, nil
}
