package ek60

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerToDb(t *testing.T) {
	got := PowerToDb(2560)
	assert.InDelta(t, 30.103, got, 1e-3)
}

func TestRangeVector(t *testing.T) {
	r := RangeVector(1, 2.56e-4, 1500, 102)
	assert.InDelta(t, 19.392, r[100], 1e-6)
}

func TestSvSinglePingScenario(t *testing.T) {
	const (
		frequency    = 38000.0
		soundSpeed   = 1500.0
		pulseLength  = 1.024e-3
		transmitPwr  = 2000.0
		gain         = 26.5
		saCorrection = -0.70
		beamAngleDb  = -20.7
		absorption   = 0.00986
		sampleInterval = 2.56e-4
	)

	n := 102
	r := RangeVector(1, sampleInterval, soundSpeed, n)
	m := soundSpeed * sampleInterval / 2

	pDb := make([]float64, n)
	pDb[100] = PowerToDb(2560)

	params := SonarEquationParams{
		TransmitPower:         transmitPwr,
		Frequency:             frequency,
		SoundVelocity:         soundSpeed,
		PulseLength:           pulseLength,
		EquivalentBeamAngleDb: beamAngleDb,
		Gain:                  gain,
		SaCorrection:          saCorrection,
		AbsorptionDbPerM:      absorption,
		TvgRangeCorrection:    DefaultSvTvgRangeCorrection,
	}

	sv := Sv(pDb, r, m, params)
	assert.InDelta(t, -34.42999, sv[100], 1e-3)
}

func TestSvToLinearInvariant(t *testing.T) {
	sv := []float64{-34.43, 0, 10}
	lin := SvToLinear(sv)
	for i, db := range sv {
		assert.InDelta(t, db, 10*math.Log10(lin[i]), 1e-9)
	}
}

func TestDecodeElectricalAngleScenario(t *testing.T) {
	along, athwart := DecodeElectricalAngle(0x83FE)
	assert.InDelta(t, -2.8125, along, 1e-6)
	assert.InDelta(t, -175.78125, athwart, 1e-3)
}

func TestDecodeElectricalAngleInvariant(t *testing.T) {
	for _, packed := range []uint16{0x0000, 0x017F, 0x8001, 0xFFFF} {
		along, athwart := DecodeElectricalAngle(packed)
		lowIdx := float64(int8(packed & 0xFF))
		highIdx := float64(int8((packed >> 8) & 0xFF))
		assert.InDelta(t, lowIdx*180/128, along, 1e-9)
		assert.InDelta(t, highIdx*180/128, athwart, 1e-9)
	}
}

func TestPhysicalAngle(t *testing.T) {
	got := PhysicalAngle(-2.8125, 21.9, 0)
	assert.InDelta(t, -2.8125/21.9, got, 1e-9)
}

func TestSvNaNWhenRangeCorrectionExceedsRange(t *testing.T) {
	r := []float64{0.1}
	pDb := []float64{10}
	params := SonarEquationParams{
		TransmitPower: 2000, Frequency: 38000, SoundVelocity: 1500,
		PulseLength: 1e-3, EquivalentBeamAngleDb: -20, Gain: 25,
		TvgRangeCorrection: 2.0,
	}
	sv := Sv(pDb, r, 1.0, params)
	assert.True(t, math.IsNaN(sv[0]))
}

func TestResampleByRatioBoundary(t *testing.T) {
	row := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	reduced := ResampleByRatio(row, 2, true)
	assert.Len(t, reduced, 4)
	assert.InDelta(t, 1.5, reduced[0], 1e-9)
	assert.InDelta(t, 7.5, reduced[3], 1e-9)

	expanded := ResampleByRatio(row, 2, false)
	assert.Len(t, expanded, 16)
	assert.InDelta(t, 1, expanded[0], 1e-9)
	assert.InDelta(t, 1, expanded[1], 1e-9)
	assert.InDelta(t, 8, expanded[15], 1e-9)
}

func TestResampleByRatioNoOpBelowRatioTwo(t *testing.T) {
	row := []float64{1, 2, 3}
	assert.Equal(t, row, ResampleByRatio(row, 1, true))
	assert.Equal(t, row, ResampleByRatio(row, 0, false))
}

func TestResampleDbByRatioReducesInLinearDomain(t *testing.T) {
	// the second pair holds one sample at 0 dB (linear power 1) and one at
	// 10 dB (linear power 10): averaging in the linear domain, not the dB
	// domain, must yield 10*log10((1+10)/2) rather than the dB-domain mean
	// of 5.
	row := []float64{0, 0, 0, 10}
	out := ResampleDbByRatio(row, 2, true)
	assert.Len(t, out, 2)
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 10*math.Log10(5.5), out[1], 1e-9)
}

func TestResampleDbByRatioExpandRepeatsSamples(t *testing.T) {
	row := []float64{3, 6}
	out := ResampleDbByRatio(row, 2, false)
	assert.Equal(t, []float64{3, 3, 6, 6}, out)
}

func TestResampleDbByRatioNaNPadTreatedAsZeroLinear(t *testing.T) {
	row := []float64{math.NaN(), math.NaN()}
	out := ResampleDbByRatio(row, 2, true)
	assert.Len(t, out, 1)
	assert.True(t, math.IsNaN(out[0]))
}
