package ek60

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/interp"

	"github.com/echosounder/go-ek60/decode"
)

// earthRadiusKm is the Earth radius used by the haversine distance
// calculation, matching the value pyEcholab's gps_distance used.
const earthRadiusKm = 6356.78

// DefaultMaxGpsJumpNmi and DefaultMaxOutlierIterations are the default
// outlier-rejection parameters: a displacement between two consecutive
// interpolated fixes larger than DefaultMaxGpsJumpNmi nautical miles is
// treated as a bad GPS fix, and both the fix and its predecessor are
// dropped. The loop runs until a pass removes nothing, capped at
// DefaultMaxOutlierIterations passes so a persistently noisy feed can't
// spin forever.
const (
	DefaultMaxGpsJumpNmi        = 2.0
	DefaultMaxOutlierIterations = 40
)

// haversineKm returns the great-circle distance between two lat/lon pairs
// (degrees) in kilometres.
func haversineKm(lat0, lon0, lat1, lon1 float64) float64 {
	const degToRad = math.Pi / 180
	lat0r, lat1r := lat0*degToRad, lat1*degToRad
	dLat := lat1r - lat0r
	dLon := (lon1 - lon0) * degToRad

	haversin := func(x float64) float64 { return math.Sin(x/2) * math.Sin(x/2) }
	rhs := haversin(dLat) + math.Cos(lat0r)*math.Cos(lat1r)*haversin(dLon)
	return earthRadiusKm * 2 * math.Asin(math.Sqrt(rhs))
}

// RejectOutliers repeatedly scans a chronologically ordered sequence of
// fixes for displacement jumps exceeding maxJumpNmi nautical miles between
// consecutive points, dropping both ends of each jump, until a pass finds
// nothing left to drop or maxIterations passes have run.
func RejectOutliers(fixes []Fix, maxJumpNmi float64, maxIterations int) []Fix {
	cur := append([]Fix(nil), fixes...)
	for iter := 0; iter < maxIterations; iter++ {
		if len(cur) < 2 {
			break
		}
		bad := make([]bool, len(cur))
		anyBad := false
		for i := 1; i < len(cur); i++ {
			km := haversineKm(cur[i-1].Latitude, cur[i-1].Longitude, cur[i].Latitude, cur[i].Longitude)
			nmi := km * 1000 / 1852.0
			if nmi > maxJumpNmi {
				bad[i] = true
				bad[i-1] = true
				anyBad = true
			}
		}
		if !anyBad {
			break
		}
		filtered := make([]Fix, 0, len(cur))
		for i, f := range cur {
			if !bad[i] {
				filtered = append(filtered, f)
			}
		}
		cur = filtered
	}
	return cur
}

// LinearInterpolate resamples a (srcTimes, srcValues) series onto dstTimes
// by linear interpolation, returning NaN for any destination time outside
// the source series' span. srcTimes must be strictly increasing.
func LinearInterpolate(srcTimes []decode.Instant, srcValues []float64, dstTimes []decode.Instant) []float64 {
	out := make([]float64, len(dstTimes))
	if len(srcTimes) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	if len(srcTimes) == 1 {
		for i, t := range dstTimes {
			if t.Equal(srcTimes[0]) {
				out[i] = srcValues[0]
			} else {
				out[i] = math.NaN()
			}
		}
		return out
	}

	xs := make([]float64, len(srcTimes))
	for i, t := range srcTimes {
		xs[i] = float64(t.UnixMs())
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, srcValues); err != nil {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	lo, hi := xs[0], xs[len(xs)-1]
	for i, t := range dstTimes {
		x := float64(t.UnixMs())
		if x < lo || x > hi {
			out[i] = math.NaN()
			continue
		}
		out[i] = pl.Predict(x)
	}
	return out
}

// ReconstructDate resolves the full UTC timestamp for a time-of-day-only
// NMEA field (e.g. GGA's hhmmss.ss with no date) given the previously
// resolved timestamp in the same stream. Most readings simply share
// prev's calendar date; a reading whose time-of-day is much earlier than
// prev's despite arriving later in the stream indicates the clock rolled
// over midnight, and one whose time-of-day is much later indicates the
// previous reading was itself just after a rollover the caller hasn't
// advanced past yet.
func ReconstructDate(prev time.Time, timeOfDay time.Duration) time.Time {
	base := time.Date(prev.Year(), prev.Month(), prev.Day(), 0, 0, 0, 0, time.UTC)
	candidate := base.Add(timeOfDay)

	const rolloverThreshold = 12 * time.Hour
	delta := candidate.Sub(prev)
	switch {
	case delta > rolloverThreshold:
		return shiftDay(candidate, -1)
	case delta < -rolloverThreshold:
		return shiftDay(candidate, 1)
	default:
		return candidate
	}
}

// shiftDay adds n (+1 or -1) calendar days to t, re-deriving the calendar
// date through meeus's day-of-year/leap-year arithmetic rather than
// time.AddDate, mirroring how the donor pack's own FILETIME-adjacent date
// handling (decode/params.go's reference-time parser) uses the same
// julian helpers for calendar math instead of stdlib's.
func shiftDay(t time.Time, n int) time.Time {
	year := t.Year()
	doy := t.YearDay() + n

	leap := julian.LeapYearGregorian(year)
	daysInYear := 365
	if leap {
		daysInYear = 366
	}
	switch {
	case doy < 1:
		year--
		if julian.LeapYearGregorian(year) {
			doy += 366
		} else {
			doy += 365
		}
	case doy > daysInYear:
		doy -= daysInYear
		year++
	}

	month, day := julian.DayOfYearToCalendar(doy, julian.LeapYearGregorian(year))
	return time.Date(year, time.Month(month), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
