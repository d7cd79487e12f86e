package ek60

import "github.com/echosounder/go-ek60/decode"

// BottomLog accumulates DEP0/BOT0 bottom-detection samples: a detected
// depth (and, for DEP0, a reflectivity estimate) per channel, per ping.
type BottomLog struct {
	samples         []decode.BottomSample
	hasReflectivity bool
}

// NewBottomLog constructs an empty bottom log. hasReflectivity should be
// true if the samples being appended originate from DEP0 datagrams, false
// for BOT0.
func NewBottomLog(hasReflectivity bool) *BottomLog {
	return &BottomLog{hasReflectivity: hasReflectivity}
}

// Append records one bottom-detection sample.
func (l *BottomLog) Append(s decode.BottomSample) {
	l.samples = append(l.samples, s)
}

// Samples returns every recorded sample, in recording order.
func (l *BottomLog) Samples() []decode.BottomSample {
	return l.samples
}

// HasReflectivity reports whether this log's samples carry a reflectivity
// estimate alongside depth (true for DEP0-sourced logs, false for BOT0).
func (l *BottomLog) HasReflectivity() bool {
	return l.hasReflectivity
}

// DepthAt returns the per-channel depth vector for the sample at index i.
func (l *BottomLog) DepthAt(i int) []float64 {
	return l.samples[i].Depth
}
