package ek60

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// AbsorptionMethod selects which seawater absorption model AbsorptionDbm
// evaluates.
type AbsorptionMethod int

const (
	AinslieMcColm AbsorptionMethod = iota
	FrancoisGarrison
)

// AbsorptionOptions parameterizes the absorption calculation. LegacyAM
// selects an alternate grouping of the Ainslie-McColm formula's 0.00049
// scale term: some deployed EK60 processing chains apply it only to the
// first (boric-acid relaxation) term rather than to the combined boric
// acid + magnesium sulphate sum before the final frequency-squared scale.
// The corrected (non-legacy) grouping, the default, follows the bracketed
// form published by Ainslie & McColm (1998): the 0.00049 pure-water term is
// added to the boric acid and magnesium sulphate terms rather than
// multiplying either of them.
type AbsorptionOptions struct {
	LegacyAM bool
}

// AbsorptionDbm computes seawater sound absorption in dB/m for one or more
// pings, given per-ping environment and signal parameters. All input
// slices must be the same length; the result is that same length.
//
// frequencyHz is tx frequency in Hz, depthM is transducer depth in metres,
// temperatureC is water temperature in Celsius, salinityPsu is salinity in
// PSU, pH is acidity, and soundVelocity is sound speed in m/s (only used
// by Francois-Garrison).
func AbsorptionDbm(method AbsorptionMethod, opts AbsorptionOptions,
	frequencyHz, depthM, temperatureC, salinityPsu, pH, soundVelocity []float64) []float64 {
	switch method {
	case FrancoisGarrison:
		return francoisGarrison(frequencyHz, depthM, temperatureC, salinityPsu, pH, soundVelocity)
	default:
		return ainslieMcColm(opts, frequencyHz, depthM, temperatureC, salinityPsu, pH)
	}
}

// ainslieMcColm implements Ainslie & McColm (1998), "A simplified formula
// for viscous and chemical absorption in sea water".
func ainslieMcColm(opts AbsorptionOptions, frequencyHz, depthM, temperatureC, salinityPsu, pH []float64) []float64 {
	n := len(frequencyHz)
	out := make([]float64, n)

	fkhz := make([]float64, n)
	copy(fkhz, frequencyHz)
	floats.Scale(0.001, fkhz) // Hz -> kHz

	depthKm := make([]float64, n)
	copy(depthKm, depthM)
	floats.Scale(0.001, depthKm) // m -> km

	for i := 0; i < n; i++ {
		T := temperatureC[i]
		S := salinityPsu[i]
		D := depthKm[i]
		fsq := fkhz[i] * fkhz[i]

		f1 := 0.78 * math.Sqrt(S/35.0) * math.Exp(T/26.0)
		f2 := 42.0 * math.Exp(T/17.0)

		boric := 0.106 * math.Exp((pH[i]-8.0)/0.56) * f1 / (f1*f1 + fsq)
		mgso4 := 0.52 * (1 + T/43.0) * (S / 35.0) * math.Exp(-D/6.0) * f2 / (fsq + f2*f2)

		pureWater := 0.00049 * math.Exp(-(T/27.0 + D/17.0))

		var a float64
		if opts.LegacyAM {
			a = boric*pureWater + mgso4
		} else {
			a = boric + mgso4 + pureWater
		}
		out[i] = (fsq / 1000) * a
	}
	return out
}

// francoisGarrison implements Francois & Garrison (1982), "Sound
// absorption based on ocean measurements: Part II", in the form adapted by
// the echopype project (boric acid + magnesium sulphate + pure water
// terms, A3's polynomial split at 20 degrees C).
func francoisGarrison(frequencyHz, depthM, temperatureC, salinityPsu, pH, soundVelocity []float64) []float64 {
	n := len(frequencyHz)
	out := make([]float64, n)

	fkhz := make([]float64, n)
	copy(fkhz, frequencyHz)
	floats.Scale(0.001, fkhz) // Hz -> kHz

	for i := 0; i < n; i++ {
		f := fkhz[i]
		T := temperatureC[i]
		S := salinityPsu[i]
		D := depthM[i]
		c := soundVelocity[i]

		A1 := 8.86 / c * math.Pow(10, 0.78*pH[i]-5)
		P1 := 1.0
		f1 := 2.8 * math.Sqrt(S/35) * math.Pow(10, 4-1245/(T+273))

		A2 := 21.44 * S / c * (1 + 0.025*T)
		P2 := 1.0 - 1.37e-4*D + 6.2e-9*D*D
		f2 := 8.17 * math.Pow(10, 8-1990/(T+273)) / (1 + 0.0018*(S-35))

		P3 := 1.0 - 3.83e-5*D + 4.9e-10*D*D
		var A3 float64
		if T <= 20 {
			A3 = 4.937e-4 - 2.59e-5*T + 9.11e-7*T*T - 1.5e-8*T*T*T
		} else {
			A3 = 3.964e-4 - 1.146e-5*T + 1.45e-7*T*T - 6.5e-10*T*T*T
		}

		a := A1*P1*f1*f*f/(f1*f1+f*f) + A2*P2*f2*f*f/(f2*f2+f*f) + A3*P3*f*f
		out[i] = -20 * math.Log10(math.Pow(10, -a/20)) / 1000
	}
	return out
}
