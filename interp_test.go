package ek60

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/echosounder/go-ek60/decode"
)

func instantAtSeconds(s int64) decode.Instant {
	return decode.NewInstant(s * 1000)
}

func TestLinearInterpolateScenario(t *testing.T) {
	srcTimes := []decode.Instant{instantAtSeconds(10), instantAtSeconds(20)}
	srcValues := []float64{1.0, 3.0}
	dstTimes := []decode.Instant{instantAtSeconds(5), instantAtSeconds(15), instantAtSeconds(25)}

	out := LinearInterpolate(srcTimes, srcValues, dstTimes)

	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 2.0, out[1], 1e-9)
	assert.True(t, math.IsNaN(out[2]))
}

func TestLinearInterpolateMonotonicInvariant(t *testing.T) {
	srcTimes := []decode.Instant{instantAtSeconds(0), instantAtSeconds(10), instantAtSeconds(20), instantAtSeconds(30)}
	srcValues := []float64{0, 5, 5, 20}
	dstTimes := make([]decode.Instant, 0, 31)
	for s := int64(0); s <= 30; s++ {
		dstTimes = append(dstTimes, instantAtSeconds(s))
	}
	out := LinearInterpolate(srcTimes, srcValues, dstTimes)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], out[i-1]-1e-9)
	}
}

func TestLinearInterpolateEmptySource(t *testing.T) {
	out := LinearInterpolate(nil, nil, []decode.Instant{instantAtSeconds(1)})
	assert.Len(t, out, 1)
	assert.True(t, math.IsNaN(out[0]))
}

func TestHaversineKmZeroForSamePoint(t *testing.T) {
	d := haversineKm(10, 20, 10, 20)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestRejectOutliersDropsJump(t *testing.T) {
	fixes := []Fix{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.001, Longitude: 0.001},
		{Latitude: 10, Longitude: 10}, // wild outlier jump
		{Latitude: 0.002, Longitude: 0.002},
	}
	out := RejectOutliers(fixes, DefaultMaxGpsJumpNmi, DefaultMaxOutlierIterations)
	for _, f := range out {
		assert.NotEqual(t, 10.0, f.Latitude)
	}
}

func TestReconstructDateSameDay(t *testing.T) {
	prev := time.Date(2022, time.October, 1, 23, 50, 0, 0, time.UTC)
	got := ReconstructDate(prev, 23*time.Hour+55*time.Minute)
	assert.Equal(t, 2022, got.Year())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestReconstructDateMidnightRollover(t *testing.T) {
	prev := time.Date(2022, time.October, 1, 23, 59, 0, 0, time.UTC)
	got := ReconstructDate(prev, 1*time.Minute)
	assert.Equal(t, 2022, got.Year())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, 2, got.Day())
}

func TestReconstructDateYearBoundaryRollover(t *testing.T) {
	prev := time.Date(2022, time.December, 31, 23, 58, 0, 0, time.UTC)
	got := ReconstructDate(prev, 2*time.Minute)
	assert.Equal(t, 2023, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 1, got.Day())
}
