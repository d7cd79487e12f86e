package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// NmeaText is an NME0 datagram: a single NMEA 0183 sentence with its
// recording timestamp. Parsing and validating the sentence itself is the
// concern of the nmea log, not the framing layer.
type NmeaText struct {
	Time Instant
	Text string
}

// DecodeNmea0 decodes an NME0 datagram body: a NUL-terminated (or
// length-bound) ASCII NMEA sentence.
func DecodeNmea0(body []byte, t Instant) NmeaText {
	return NmeaText{Time: t, Text: trimTextField(body)}
}

// TagText is a TAG0 annotation datagram: free-text operator commentary.
type TagText struct {
	Time Instant
	Text string
}

// DecodeTag0 decodes a TAG0 datagram body.
func DecodeTag0(body []byte, t Instant) TagText {
	return TagText{Time: t, Text: trimTextField(body)}
}

func trimTextField(body []byte) string {
	if i := bytes.IndexByte(body, 0); i >= 0 {
		body = body[:i]
	}
	return strings.TrimRight(string(body), "\r\n")
}

// MotionSample is an MRU0 datagram: the vessel motion unit's instantaneous
// heave, roll, pitch and heading.
type MotionSample struct {
	Time    Instant
	Heave   float64 // metres
	Roll    float64 // degrees
	Pitch   float64 // degrees
	Heading float64 // degrees
}

// DecodeMru0 decodes an MRU0 datagram body: four little-endian float32
// fields, in heave/roll/pitch/heading order.
func DecodeMru0(body []byte, t Instant) (MotionSample, error) {
	if len(body) < 16 {
		return MotionSample{}, fmt.Errorf("%w: MRU0 body shorter than 16 bytes", ErrIo)
	}
	var vals [4]float32
	if err := binary.Read(bytes.NewReader(body[:16]), binary.LittleEndian, &vals); err != nil {
		return MotionSample{}, fmt.Errorf("%w: %v", ErrIo, err)
	}
	return MotionSample{
		Time:    t,
		Heave:   float64(vals[0]),
		Roll:    float64(vals[1]),
		Pitch:   float64(vals[2]),
		Heading: float64(vals[3]),
	}, nil
}

// BottomSample is a DEP0 or BOT0 datagram: one detected-bottom depth per
// channel, plus reflectivity when the datagram carries it (DEP0 only).
// Neither datagram encodes the channel count itself; callers must supply it
// from the file's ConfigHeader.
type BottomSample struct {
	Time         Instant
	Depth        []float64
	Reflectivity []float64 // nil for BOT0
}

// DecodeBottom decodes a DEP0 (hasReflectivity=true) or BOT0
// (hasReflectivity=false) datagram body. DEP0's trailing "unused" float
// array is read past and discarded.
func DecodeBottom(body []byte, t Instant, channelCount int, hasReflectivity bool) (BottomSample, error) {
	need := channelCount * 4
	if hasReflectivity {
		need += channelCount * 4 * 2 // reflectivity + unused
	}
	if len(body) < need {
		return BottomSample{}, fmt.Errorf("%w: bottom datagram too short for %d channels", ErrIo, channelCount)
	}

	reader := bytes.NewReader(body)
	depth := make([]float32, channelCount)
	if err := binary.Read(reader, binary.LittleEndian, &depth); err != nil {
		return BottomSample{}, fmt.Errorf("%w: %v", ErrIo, err)
	}

	bs := BottomSample{Time: t, Depth: toFloat64Slice(depth)}
	if hasReflectivity {
		refl := make([]float32, channelCount)
		if err := binary.Read(reader, binary.LittleEndian, &refl); err != nil {
			return BottomSample{}, fmt.Errorf("%w: %v", ErrIo, err)
		}
		bs.Reflectivity = toFloat64Slice(refl)
		// trailing "unused" float32 array: intentionally not decoded.
	}
	return bs, nil
}

func toFloat64Slice(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
