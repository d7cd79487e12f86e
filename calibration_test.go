package ek60

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrationResolveScalar(t *testing.T) {
	cal := NewCalibration().WithScalar("gain", 26.5)
	out, err := cal.resolve("gain", 3, []int{0, 1, 2}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float64{26.5, 26.5, 26.5}, out)
}

func TestCalibrationResolveVectorByNPings(t *testing.T) {
	cal := NewCalibration().WithVector("sa_correction", []float64{-0.1, -0.2, -0.3})
	out, err := cal.resolve("sa_correction", 3, []int{2, 0}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float64{-0.3, -0.1}, out)
}

func TestCalibrationResolveVectorBySelection(t *testing.T) {
	// vector length matches the selection (2), not n_pings (5): applied
	// positionally rather than indexed by absolute ping position.
	cal := NewCalibration().WithVector("gain", []float64{10, 20})
	out, err := cal.resolve("gain", 5, []int{3, 4}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float64{10.0, 20.0}, out)
}

func TestCalibrationResolveRawFallback(t *testing.T) {
	cal := NewCalibration()
	raw := func(idx int) (float64, bool) {
		return float64(idx) * 100, true
	}
	out, err := cal.resolve("sound_velocity", 3, []int{0, 1, 2}, raw, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float64{0, 100, 200}, out)
}

func TestCalibrationResolveConfigFallback(t *testing.T) {
	cal := NewCalibration()
	raw := func(idx int) (float64, bool) { return 0, false }
	cfg := func() (float64, bool) { return 42.0, true }
	out, err := cal.resolve("gain", 3, []int{0, 1}, raw, cfg)
	assert.NoError(t, err)
	assert.Equal(t, []float64{42.0, 42.0}, out)
}

func TestCalibrationResolveMissing(t *testing.T) {
	cal := NewCalibration()
	_, err := cal.resolve("gain", 3, []int{0}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingCalibrationParam)
}

func TestCalibrationResolveInvalidVectorLength(t *testing.T) {
	cal := NewCalibration().WithVector("gain", []float64{1, 2})
	_, err := cal.resolve("gain", 5, []int{0, 1, 2}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidCalibrationLength)
}

func TestCalibrationWithScalarUnknownParamPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewCalibration().WithScalar("not_a_real_param", 1.0)
	})
}

func TestCalibrationCopyIsIndependent(t *testing.T) {
	base := NewCalibration().WithVector("gain", []float64{1, 2, 3})
	derived := base.WithScalar("sa_correction", -0.1)

	baseOut, err := base.resolve("sa_correction", 1, []int{0}, nil, nil)
	assert.Error(t, err)
	_ = baseOut

	derivedOut, err := derived.resolve("sa_correction", 1, []int{0}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []float64{-0.1}, derivedOut)
}
