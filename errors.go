package ek60

import (
	"errors"

	"github.com/echosounder/go-ek60/decode"
)

// Error taxonomy. Kept as a flat set of sentinel values, wrapped with
// positional/contextual detail via fmt.Errorf's %w at the call site (the
// TileDB helpers use errors.Join), matching the donor's error style rather
// than a custom error-interface hierarchy. ErrCorruptFrame is the decode
// package's sentinel, so errors.Is matches the frame reader's errors.
var (
	ErrIo                         = errors.New("io error reading datagram stream")
	ErrCorruptFrame               = decode.ErrCorruptFrame
	ErrUnknownDatagramType        = errors.New("unknown datagram type tag")
	ErrInvalidMode                = errors.New("RAW0 mode bits disagree with payload length")
	ErrInvalidCalibrationLength   = errors.New("calibration vector length does not match n_pings")
	ErrMissingCalibrationParam    = errors.New("no calibration, raw, or config value for parameter")
	ErrInvertedRange              = errors.New("index range resolves to hi < lo")
	ErrPulseLengthMismatch        = errors.New("ping pulse_length does not match any config table entry")
	ErrChecksumInvalid            = errors.New("NMEA sentence checksum invalid")
	ErrUnknownCalibrationKey      = errors.New("unknown ECS calibration key")
	ErrUnknownChannel             = errors.New("unknown channel id")
	ErrNmeaTypeUnavailable        = errors.New("no sentence of any preferred type recorded")
)
