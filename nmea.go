package ek60

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/echosounder/go-ek60/decode"
)

// Sentence is one parsed NME0 datagram: its talker id, sentence type,
// comma-delimited fields (checksum stripped), and recording time.
type Sentence struct {
	Time   decode.Instant
	Talker string // e.g. "GP", "IN", "GN"
	Type   string // e.g. "GGA", "RMC", "VTG"
	Fields []string
	Raw    string
}

// ValidateChecksum reports whether sentence's trailing "*hh" checksum
// matches the XOR of every byte between '$' and '*'. A sentence with no
// checksum field is treated as invalid, matching pyEcholab's is_valid
// (which requires a checksum be present to validate).
func ValidateChecksum(sentence string) error {
	s := strings.TrimRight(sentence, "\r\n\x00")
	start := strings.IndexByte(s, '$')
	star := strings.LastIndexByte(s, '*')
	if start < 0 || star < 0 || star < start || star+3 > len(s) {
		return fmt.Errorf("%w: %q", ErrChecksumInvalid, sentence)
	}
	want, err := strconv.ParseUint(s[star+1:star+3], 16, 8)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrChecksumInvalid, sentence)
	}
	var got byte
	for i := start + 1; i < star; i++ {
		got ^= s[i]
	}
	if byte(want) != got {
		return fmt.Errorf("%w: %q", ErrChecksumInvalid, sentence)
	}
	return nil
}

// ParseSentence splits an NMEA 0183 sentence into talker id, type and
// comma-delimited fields. It does not itself validate the checksum; callers
// that care call ValidateChecksum separately, matching pyEcholab's
// parse()/is_valid() split.
func ParseSentence(t decode.Instant, raw string) (Sentence, error) {
	s := strings.TrimRight(raw, "\r\n\x00")
	if len(s) < 6 || (s[0] != '$' && s[0] != '!') {
		return Sentence{}, fmt.Errorf("%w: malformed NMEA sentence %q", ErrChecksumInvalid, raw)
	}
	body := s[1:]
	if star := strings.IndexByte(body, '*'); star >= 0 {
		body = body[:star]
	}
	parts := strings.Split(body, ",")
	head := parts[0]
	if len(head) < 5 {
		return Sentence{}, fmt.Errorf("%w: sentence head too short %q", ErrChecksumInvalid, raw)
	}
	return Sentence{
		Time:   t,
		Talker: head[0:2],
		Type:   head[2:5],
		Fields: parts[1:],
		Raw:    raw,
	}, nil
}

// NmeaLog accumulates parsed sentences, indexed by type and by
// talker+type, so callers can resolve a preferred source when several
// sentence types report the same quantity (position, speed, distance).
type NmeaLog struct {
	sentences []Sentence
	byType    map[string][]int
}

// NewNmeaLog constructs an empty log.
func NewNmeaLog() *NmeaLog {
	return &NmeaLog{byType: make(map[string][]int)}
}

// Append validates and parses raw, recording it in the log. A checksum or
// parse failure is returned to the caller rather than silently dropped;
// callers loading a whole file typically collect these as load warnings.
func (l *NmeaLog) Append(t decode.Instant, raw string) error {
	if err := ValidateChecksum(raw); err != nil {
		return err
	}
	sentence, err := ParseSentence(t, raw)
	if err != nil {
		return err
	}
	idx := len(l.sentences)
	l.sentences = append(l.sentences, sentence)
	l.byType[sentence.Type] = append(l.byType[sentence.Type], idx)
	talkerType := sentence.Talker + sentence.Type
	l.byType[talkerType] = append(l.byType[talkerType], idx)
	return nil
}

// ByType returns every sentence of the given 3-letter type (e.g. "GGA") or
// 5-letter talker+type (e.g. "GPGGA"), in recording order.
func (l *NmeaLog) ByType(kind string) []Sentence {
	idxs := l.byType[kind]
	out := make([]Sentence, len(idxs))
	for i, idx := range idxs {
		out[i] = l.sentences[idx]
	}
	return out
}

// positionPreference and speedPreference are the meta-type resolution
// orders: the first sentence type with any recorded sentences wins.
var positionPreference = []string{"GGA", "GLL", "RMC"}
var speedPreference = []string{"VTG", "VHW", "RMC"}

// Fix is one resolved position sample.
type Fix struct {
	Time      decode.Instant
	Latitude  float64
	Longitude float64
}

// Positions resolves the position meta-type: GGA preferred, then GLL, then
// RMC, returning whichever type the log actually holds sentences for.
func (l *NmeaLog) Positions() ([]Fix, error) {
	kind, ok := lo.Find(positionPreference, func(k string) bool { return len(l.byType[k]) > 0 })
	if !ok {
		return nil, fmt.Errorf("%w: no GGA/GLL/RMC sentences recorded", ErrNmeaTypeUnavailable)
	}
	sentences := l.ByType(kind)
	fixes := make([]Fix, 0, len(sentences))
	for _, s := range sentences {
		fix, err := parsePositionFields(s)
		if err != nil {
			continue
		}
		fixes = append(fixes, fix)
	}
	return fixes, nil
}

func parsePositionFields(s Sentence) (Fix, error) {
	switch s.Type {
	case "GGA":
		if len(s.Fields) < 5 {
			return Fix{}, fmt.Errorf("GGA field count")
		}
		lat, err := dmToDecimal(s.Fields[1], s.Fields[2])
		if err != nil {
			return Fix{}, err
		}
		lon, err := dmToDecimal(s.Fields[3], s.Fields[4])
		if err != nil {
			return Fix{}, err
		}
		return Fix{Time: s.Time, Latitude: lat, Longitude: lon}, nil
	case "GLL":
		if len(s.Fields) < 4 {
			return Fix{}, fmt.Errorf("GLL field count")
		}
		lat, err := dmToDecimal(s.Fields[0], s.Fields[1])
		if err != nil {
			return Fix{}, err
		}
		lon, err := dmToDecimal(s.Fields[2], s.Fields[3])
		if err != nil {
			return Fix{}, err
		}
		return Fix{Time: s.Time, Latitude: lat, Longitude: lon}, nil
	case "RMC":
		if len(s.Fields) < 6 {
			return Fix{}, fmt.Errorf("RMC field count")
		}
		lat, err := dmToDecimal(s.Fields[2], s.Fields[3])
		if err != nil {
			return Fix{}, err
		}
		lon, err := dmToDecimal(s.Fields[4], s.Fields[5])
		if err != nil {
			return Fix{}, err
		}
		return Fix{Time: s.Time, Latitude: lat, Longitude: lon}, nil
	default:
		return Fix{}, fmt.Errorf("unsupported position sentence type %q", s.Type)
	}
}

// dmToDecimal converts an NMEA ddmm.mmmm / dddmm.mmmm + hemisphere pair into
// signed decimal degrees.
func dmToDecimal(value, hemisphere string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty coordinate field")
	}
	dot := strings.IndexByte(value, '.')
	if dot < 2 {
		return 0, fmt.Errorf("malformed coordinate field %q", value)
	}
	degDigits := dot - 2
	deg, err := strconv.ParseFloat(value[:degDigits], 64)
	if err != nil {
		return 0, err
	}
	min, err := strconv.ParseFloat(value[degDigits:], 64)
	if err != nil {
		return 0, err
	}
	dec := deg + min/60.0
	if hemisphere == "S" || hemisphere == "W" {
		dec = -dec
	}
	return dec, nil
}

// SpeedFix is one resolved speed-over-ground sample, in knots.
type SpeedFix struct {
	Time  decode.Instant
	Knots float64
}

// Speeds resolves the speed meta-type: VTG preferred, then VHW, then RMC.
func (l *NmeaLog) Speeds() ([]SpeedFix, error) {
	kind, ok := lo.Find(speedPreference, func(k string) bool { return len(l.byType[k]) > 0 })
	if !ok {
		return nil, fmt.Errorf("%w: no VTG/VHW/RMC sentences recorded", ErrNmeaTypeUnavailable)
	}
	sentences := l.ByType(kind)
	out := make([]SpeedFix, 0, len(sentences))
	for _, s := range sentences {
		knots, err := parseSpeedFields(s)
		if err != nil {
			continue
		}
		out = append(out, SpeedFix{Time: s.Time, Knots: knots})
	}
	return out, nil
}

func parseSpeedFields(s Sentence) (float64, error) {
	switch s.Type {
	case "VTG":
		if len(s.Fields) < 5 {
			return 0, fmt.Errorf("VTG field count")
		}
		return strconv.ParseFloat(s.Fields[4], 64)
	case "VHW":
		if len(s.Fields) < 5 {
			return 0, fmt.Errorf("VHW field count")
		}
		return strconv.ParseFloat(s.Fields[4], 64)
	case "RMC":
		if len(s.Fields) < 7 {
			return 0, fmt.Errorf("RMC field count")
		}
		return strconv.ParseFloat(s.Fields[6], 64)
	default:
		return 0, fmt.Errorf("unsupported speed sentence type %q", s.Type)
	}
}

// Distances resolves cumulative log distance in nautical miles from VLW
// sentences. There is no fallback sentence type for this quantity; callers
// needing distance when VLW is absent must derive it themselves by
// integrating resolved speed over time.
func (l *NmeaLog) Distances() ([]float64, error) {
	sentences := l.ByType("VLW")
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: no VLW sentences recorded", ErrNmeaTypeUnavailable)
	}
	out := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		if len(s.Fields) < 1 {
			continue
		}
		nm, err := strconv.ParseFloat(s.Fields[0], 64)
		if err != nil {
			continue
		}
		out = append(out, nm)
	}
	return out, nil
}
