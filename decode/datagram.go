package decode

import "fmt"

// Kind discriminates the decoded payload carried by a Datagram.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindConfigExtra
	KindRaw
	KindNmea
	KindTag
	KindMotion
	KindDepth
	KindBottomDetect
)

// Datagram is the decoded, typed form of one Frame: the header plus exactly
// one populated payload field, selected by Kind. Callers needing the
// channel count for Depth/BottomDetect payloads must decode those via
// DecodeBottom directly (see Decode's KindDepth/KindBottomDetect handling),
// since that count is not self-described in the datagram body.
type Datagram struct {
	Kind Kind
	Time Instant
	Tag  string

	Config    *ConfigHeader // KindConfig
	ConfigRaw []byte        // KindConfigExtra: CON1 passthrough, format-version specific
	Ping      *RawSample    // KindRaw
	Nmea      *NmeaText     // KindNmea
	Note      *TagText      // KindTag
	Motion    *MotionSample // KindMotion

	// Raw carries the undecoded body for KindUnknown, and for KindDepth /
	// KindBottomDetect until the caller (which knows the channel count from
	// the file's ConfigHeader) runs it through DecodeBottom.
	Raw []byte
}

// Known 4-byte datagram type tags (spec section 4.2/6.1).
const (
	TagConfig0  = "CON0"
	TagConfig1  = "CON1"
	TagRaw0     = "RAW0"
	TagNmea0    = "NME0"
	TagTag0     = "TAG0"
	TagMru0     = "MRU0"
	TagDepth0   = "DEP0"
	TagBottom0  = "BOT0"
)

// Decode dispatches a Frame to the parser matching its header tag. CON1,
// DEP0 and BOT0 bodies need context the frame alone doesn't carry (CON1's
// layout is format-version specific, DEP0/BOT0 need the channel count from
// the file's ConfigHeader); those are decoded into Datagram.ConfigRaw/Raw
// here and the caller with that context (the top-level aggregator) calls
// DecodeBottom directly once it has read the file's CON0.
func Decode(frame Frame) (Datagram, error) {
	dg := Datagram{Time: frame.Header.Time, Tag: frame.Header.Tag}

	switch frame.Header.Tag {
	case TagConfig0:
		cfg, err := DecodeConfigHeader(frame.Body)
		if err != nil {
			return Datagram{}, err
		}
		dg.Kind = KindConfig
		dg.Config = &cfg

	case TagConfig1:
		dg.Kind = KindConfigExtra
		dg.ConfigRaw = frame.Body

	case TagRaw0:
		ping, err := DecodeRaw0(frame.Body, frame.Header.Time)
		if err != nil {
			return Datagram{}, err
		}
		dg.Kind = KindRaw
		dg.Ping = &ping

	case TagNmea0:
		nmea := DecodeNmea0(frame.Body, frame.Header.Time)
		dg.Kind = KindNmea
		dg.Nmea = &nmea

	case TagTag0:
		note := DecodeTag0(frame.Body, frame.Header.Time)
		dg.Kind = KindTag
		dg.Note = &note

	case TagMru0:
		motion, err := DecodeMru0(frame.Body, frame.Header.Time)
		if err != nil {
			return Datagram{}, err
		}
		dg.Kind = KindMotion
		dg.Motion = &motion

	case TagDepth0:
		dg.Kind = KindDepth
		dg.Raw = frame.Body

	case TagBottom0:
		dg.Kind = KindBottomDetect
		dg.Raw = frame.Body

	default:
		dg.Kind = KindUnknown
		dg.Raw = frame.Body
		return dg, fmt.Errorf("%w: %q", ErrUnknownDatagramType, frame.Header.Tag)
	}

	return dg, nil
}
