package ek60

import "math"

// log2Db10 is 10·log10(2), the scale factor converting an indexed power
// sample to dB: 256 counts per doubling of power, i.e. per 10·log10(2) dB.
const log2Db10 = 10 * math.Ln2 / math.Ln10

// PowerToDb converts one indexed power sample to dB: P_dB = indexed *
// 10·log10(2)/256.
func PowerToDb(indexed int16) float64 {
	return float64(indexed) * log2Db10 / 256
}

// PowerRowToDb converts a full indexed-power row, substituting NaN for
// PowerPad padding cells.
func PowerRowToDb(row []int16) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		if v == PowerPad {
			out[i] = math.NaN()
			continue
		}
		out[i] = PowerToDb(v)
	}
	return out
}

// DecodeElectricalAngle splits one packed indexed-angle sample into its
// alongship/athwartship electrical angles in degrees. The low byte is the
// alongship index, the high byte athwartship, both signed two's-complement
// 8-bit values; angle_elec = indexed * 180/128.
func DecodeElectricalAngle(packed uint16) (alongship, athwartship float64) {
	along := int8(packed & 0xFF)
	athwart := int8((packed >> 8) & 0xFF)
	return float64(along) * 180 / 128, float64(athwart) * 180 / 128
}

// PhysicalAngle converts an electrical angle to a physical angle using the
// per-axis calibration sensitivity and offset: angle_phys =
// angle_elec/sensitivity - offset.
func PhysicalAngle(electrical, sensitivity, offset float64) float64 {
	return electrical/sensitivity - offset
}

// RangeVector returns the range (metres) of each sample index for a ping
// with the given sample_offset, sound velocity (m/s) and sample_interval
// (s): r_k = (k + sample_offset) * m, m = c*dt/2.
func RangeVector(sampleOffset uint32, sampleInterval, soundVelocity float64, n int) []float64 {
	m := soundVelocity * sampleInterval / 2
	r := make([]float64, n)
	for k := 0; k < n; k++ {
		r[k] = float64(int(sampleOffset)+k) * m
	}
	return r
}

// SonarEquationParams bundles the per-ping environment and calibration
// inputs shared by Sv and Sp.
type SonarEquationParams struct {
	TransmitPower        float64 // Pt, watts
	Frequency            float64 // Hz
	SoundVelocity        float64 // m/s
	PulseLength          float64 // tau, seconds
	EquivalentBeamAngleDb float64 // psi, dB re 1 steradian
	Gain                 float64 // G, dB
	SaCorrection         float64 // Sa, dB (ignored by Sp)
	AbsorptionDbPerM     float64 // alpha
	TvgRangeCorrection   float64 // in samples; defaults differ between Sv and Sp
}

// sonarEquationConstant computes -10*log10(Pt*lambda^2*c*tau*psi/(32*pi^2)),
// the frequency/power/beamwidth term shared by Sv. Sp's constant,
// -10*log10(Pt*lambda^2/(16*pi^2)), omits the c, tau (pulse length) and psi
// factors and uses 16*pi^2 in place of 32*pi^2; see
// sonarEquationConstantSp.
func sonarEquationConstant(p SonarEquationParams) float64 {
	lambda := p.SoundVelocity / p.Frequency
	psi := math.Pow(10, p.EquivalentBeamAngleDb/10)
	denom := 32 * math.Pi * math.Pi
	term := p.TransmitPower * lambda * lambda * p.SoundVelocity * p.PulseLength * psi / denom
	return -10 * math.Log10(term)
}

func sonarEquationConstantSp(p SonarEquationParams) float64 {
	lambda := p.SoundVelocity / p.Frequency
	denom := 16 * math.Pi * math.Pi
	term := p.TransmitPower * lambda * lambda / denom
	return -10 * math.Log10(term)
}

// DefaultSvTvgRangeCorrection and DefaultSpTvgRangeCorrection are the
// range-correction defaults (in samples) for the Sv and Sp TVG terms.
const (
	DefaultSvTvgRangeCorrection = 2.0
	DefaultSpTvgRangeCorrection = 0.0
)

// Sv computes volume backscattering strength (dB re 1 m^-1) for one ping's
// power-dB row, given its range vector and the sonar-equation parameters.
// R_eff = max(0, R - tvg_range_correction*m); rows where R_eff is 0 yield
// NaN.
func Sv(pDb []float64, r []float64, m float64, p SonarEquationParams) []float64 {
	out := make([]float64, len(pDb))
	c := sonarEquationConstant(p)
	for k := range pDb {
		rEff := r[k] - p.TvgRangeCorrection*m
		if rEff < 0 {
			rEff = 0
		}
		if rEff == 0 {
			out[k] = math.NaN()
			continue
		}
		if math.IsNaN(pDb[k]) {
			out[k] = math.NaN()
			continue
		}
		out[k] = pDb[k] + 20*math.Log10(rEff) + 2*p.AbsorptionDbPerM*r[k] - c - 2*p.Gain - 2*p.SaCorrection
	}
	return out
}

// SvToLinear converts an Sv (dB) row to linear sv.
func SvToLinear(sv []float64) []float64 {
	out := make([]float64, len(sv))
	for i, v := range sv {
		out[i] = math.Pow(10, v/10)
	}
	return out
}

// Sp computes target strength (dB) for one ping's power-dB row, following
// the same pipeline as Sv but with 40*log10(R_eff), no Sa term, and a
// different sonar-equation constant (no sound-speed, pulse-length or beam
// angle factor).
func Sp(pDb []float64, r []float64, m float64, p SonarEquationParams) []float64 {
	out := make([]float64, len(pDb))
	c := sonarEquationConstantSp(p)
	for k := range pDb {
		rEff := r[k] - p.TvgRangeCorrection*m
		if rEff < 0 {
			rEff = 0
		}
		if rEff == 0 || math.IsNaN(pDb[k]) {
			out[k] = math.NaN()
			continue
		}
		out[k] = pDb[k] + 40*math.Log10(rEff) + 2*p.AbsorptionDbPerM*r[k] - c - 2*p.Gain
	}
	return out
}

// SpToLinear converts an Sp (dB) row to linear sp.
func SpToLinear(sp []float64) []float64 {
	return SvToLinear(sp)
}

// CalibratedGrid is the dense, aligned output of a transform operation
// (get_power/get_Sv/get_Sp/to_grid): one row per ping, one column per
// aligned sample, sharing a single range vector across all rows.
type CalibratedGrid struct {
	ChannelID string
	Time      []float64 // unix ms, one per ping row
	Range     []float64 // metres, one per column
	Data      [][]float64
}

// AlignmentMode selects how to_grid aligns pings vertically.
type AlignmentMode int

const (
	AlignTransducerFace AlignmentMode = iota
	AlignSurface
	AlignBottom
	AlignCommonOffset // resolves the §9 open question: treat every ping's sample_offset as already common, skip per-ping realignment
	AlignExplicit
)

const missingSentinel = math.MaxFloat64 * -1 // distinguishable from NaN for callers that need a finite sentinel; most consumers should prefer NaN

// ResampleByRatio implements spec §4.8.9 step 2 for values already in a
// linear domain (e.g. electrical/physical angle degrees, range metres):
// reduce=true averages every `ratio` consecutive samples, shrinking len(row)
// by ratio; reduce=false repeats each sample `ratio` times, growing len(row)
// by ratio. ratio<=1 returns a copy of row unchanged.
func ResampleByRatio(row []float64, ratio int, reduce bool) []float64 {
	if ratio <= 1 {
		return append([]float64(nil), row...)
	}
	if reduce {
		n := len(row) / ratio
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < ratio; j++ {
				sum += row[i*ratio+j]
			}
			out[i] = sum / float64(ratio)
		}
		return out
	}
	out := make([]float64, len(row)*ratio)
	for i, v := range row {
		for j := 0; j < ratio; j++ {
			out[i*ratio+j] = v
		}
	}
	return out
}

// ResampleDbByRatio is ResampleByRatio for a row of dB values (power, Sv,
// Sp): reduction converts to linear, averages, then converts back, matching
// §4.8.9 step 2's "average in linear domain" wording. NaN cells (padding)
// convert to 0 before averaging and back to NaN if the resulting mean is
// non-positive. Expansion repeats the dB values directly, which equals
// repeating in the linear domain without the round-trip rounding.
func ResampleDbByRatio(row []float64, ratio int, reduce bool) []float64 {
	if ratio <= 1 || !reduce {
		return ResampleByRatio(row, ratio, reduce)
	}
	lin := make([]float64, len(row))
	for i, v := range row {
		if math.IsNaN(v) {
			continue
		}
		lin[i] = math.Pow(10, v/10)
	}
	res := ResampleByRatio(lin, ratio, reduce)
	out := make([]float64, len(res))
	for i, v := range res {
		if v <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = 10 * math.Log10(v)
	}
	return out
}

// ToGrid resamples and vertically aligns a set of same-channel ping rows
// (already converted to physical units, e.g. via Sv) onto one common
// range axis. Pulse-length resampling (averaging/repeating onto a common
// target resolution, §4.8.9 step 2) happens before ToGrid is called —
// EK60.batchRows performs it via ResampleByRatio/ResampleDbByRatio once per
// pulse_length group, so by the time rows reach here every row already
// shares one common sample resolution; ToGrid itself only performs vertical
// alignment and padding, per §4.8.9 steps 3-4.
func ToGrid(rows [][]float64, ranges [][]float64, times []float64, mode AlignmentMode,
	transducerDepths []float64, bottomDepths []float64, explicitOffsets []float64) CalibratedGrid {

	n := len(rows)
	offsets := make([]float64, n)
	switch mode {
	case AlignSurface:
		for i := range offsets {
			offsets[i] = -transducerDepths[i]
		}
	case AlignBottom:
		for i := range offsets {
			offsets[i] = -bottomDepths[i]
		}
	case AlignExplicit:
		copy(offsets, explicitOffsets)
	case AlignCommonOffset:
		// every ping takes the first non-empty ping's sample_offset, so
		// sample k of each row lands on that ping's r_k.
		ref, haveRef := 0.0, false
		for i, r := range ranges {
			if len(r) == 0 {
				continue
			}
			if !haveRef {
				ref, haveRef = r[0], true
			}
			offsets[i] = ref - r[0]
		}
	default: // AlignTransducerFace
		// offsets remain zero: every ping's own range vector is used as-is.
	}

	minRange, maxRange := math.Inf(1), math.Inf(-1)
	step := math.Inf(1)
	for i, r := range ranges {
		if len(r) == 0 {
			continue
		}
		lo := r[0] + offsets[i]
		hi := r[len(r)-1] + offsets[i]
		if lo < minRange {
			minRange = lo
		}
		if hi > maxRange {
			maxRange = hi
		}
		if len(r) > 1 {
			s := r[1] - r[0]
			if s < step {
				step = s
			}
		}
	}
	if math.IsInf(step, 1) || step <= 0 {
		step = 1
	}

	cols := int((maxRange-minRange)/step) + 1
	if cols < 1 {
		cols = 1
	}
	grid := CalibratedGrid{
		Time:  append([]float64(nil), times...),
		Range: make([]float64, cols),
		Data:  make([][]float64, n),
	}
	for c := 0; c < cols; c++ {
		grid.Range[c] = minRange + float64(c)*step
	}

	for i := 0; i < n; i++ {
		out := make([]float64, cols)
		for c := range out {
			out[c] = math.NaN()
		}
		r := ranges[i]
		row := rows[i]
		for k := 0; k < len(row) && k < len(r); k++ {
			pos := r[k] + offsets[i]
			c := int(math.Round((pos - minRange) / step))
			if c < 0 || c >= cols {
				continue
			}
			out[c] = row[k]
		}
		grid.Data[i] = out
	}
	return grid
}
