package ek60

import "fmt"

// calibrationParams is the closed set of parameter names a Calibration may
// hold. Any other name passed to WithScalar/WithVector is rejected, so a
// typo doesn't silently produce a calibration value nothing ever reads.
var calibrationParams = map[string]bool{
	"sound_velocity":                true,
	"absorption_coefficient":        true,
	"frequency":                     true,
	"transmit_power":                true,
	"pulse_length":                  true,
	"gain":                          true,
	"equivalent_beam_angle":         true,
	"sa_correction":                 true,
	"angle_sensitivity_alongship":   true,
	"angle_sensitivity_athwartship": true,
	"angle_offset_alongship":        true,
	"angle_offset_athwartship":      true,
	"sample_interval":               true,
	"transducer_depth":              true,
}

// Calibration holds, per parameter, either nothing (resolve from raw ping
// data or the channel's static config), a single scalar applied to every
// ping, or a vector either n_pings long (indexed by absolute ping
// position) or exactly as long as a given selection (applied positionally,
// no re-indexing) — mirroring pyEcholab's calibration.get_parameter
// resolution order.
type Calibration struct {
	values map[string]any // float64 | []float64, absent key == unset
}

// NewCalibration returns an empty calibration: every parameter resolves
// from raw ping data, falling back to the channel's static config.
func NewCalibration() *Calibration {
	return &Calibration{values: make(map[string]any)}
}

// Copy returns an independent deep copy.
func (c *Calibration) Copy() *Calibration {
	cp := NewCalibration()
	for k, v := range c.values {
		switch val := v.(type) {
		case []float64:
			cp.values[k] = append([]float64(nil), val...)
		default:
			cp.values[k] = v
		}
	}
	return cp
}

// WithScalar returns a copy of c with name set to a scalar applied to
// every ping. Panics on an unknown parameter name, matching the donor's
// convention of panicking on clearly-a-bug conditions (see
// decode/params.go's ParseFloat failure) rather than plumbing an error
// through a builder chain.
func (c *Calibration) WithScalar(name string, value float64) *Calibration {
	if !calibrationParams[name] {
		panic(fmt.Sprintf("ek60: unknown calibration parameter %q", name))
	}
	cp := c.Copy()
	cp.values[name] = value
	return cp
}

// WithVector returns a copy of c with name set to a vector, either
// n_pings long or exactly as long as the selection it will be resolved
// against.
func (c *Calibration) WithVector(name string, values []float64) *Calibration {
	if !calibrationParams[name] {
		panic(fmt.Sprintf("ek60: unknown calibration parameter %q", name))
	}
	cp := c.Copy()
	cp.values[name] = append([]float64(nil), values...)
	return cp
}

// rawFallback looks up a parameter directly from raw ping data for one
// absolute ping index, e.g. RawSample.SoundVelocity for "sound_velocity".
type rawFallback func(idx int) (float64, bool)

// configFallback looks up a parameter from the channel's static
// TransceiverConfig, selecting the pulse_length-indexed table row where
// relevant (gain/sa_correction).
type configFallback func() (float64, bool)

// resolve returns one value per entry in indices, an index set into the
// channel's full n_pings-long raw vectors.
func (c *Calibration) resolve(name string, nPings int, indices []int, raw rawFallback, cfg configFallback) ([]float64, error) {
	out := make([]float64, len(indices))

	v, ok := c.values[name]
	if !ok || v == nil {
		for i, idx := range indices {
			if raw != nil {
				if val, present := raw(idx); present {
					out[i] = val
					continue
				}
			}
			if cfg != nil {
				if val, present := cfg(); present {
					out[i] = val
					continue
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrMissingCalibrationParam, name)
		}
		return out, nil
	}

	switch val := v.(type) {
	case float64:
		for i := range out {
			out[i] = val
		}
		return out, nil
	case []float64:
		switch {
		case len(val) == nPings:
			for i, idx := range indices {
				if idx < 0 || idx >= len(val) {
					return nil, fmt.Errorf("%w: %s index %d out of range", ErrInvertedRange, name, idx)
				}
				out[i] = val[idx]
			}
			return out, nil
		case len(val) == len(indices):
			copy(out, val)
			return out, nil
		default:
			return nil, fmt.Errorf("%w: %s has length %d, want %d (n_pings) or %d (selection)",
				ErrInvalidCalibrationLength, name, len(val), nPings, len(indices))
		}
	default:
		return nil, fmt.Errorf("%w: %s holds an unsupported value type", ErrMissingCalibrationParam, name)
	}
}
