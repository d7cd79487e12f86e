package ek60

import "github.com/echosounder/go-ek60/decode"

// MotionLog accumulates MRU0 samples. Consecutive samples sharing the
// exact same timestamp (the motion unit firmware sometimes reports a
// reading twice before advancing its clock) are deduplicated on append,
// keeping the later reading.
type MotionLog struct {
	samples []decode.MotionSample
}

// NewMotionLog constructs an empty motion log.
func NewMotionLog() *MotionLog {
	return &MotionLog{}
}

// Append records one MRU0 sample, replacing the previous entry in place
// when its timestamp exactly matches the last recorded sample.
func (l *MotionLog) Append(s decode.MotionSample) {
	if n := len(l.samples); n > 0 && l.samples[n-1].Time.Equal(s.Time) {
		l.samples[n-1] = s
		return
	}
	l.samples = append(l.samples, s)
}

// Samples returns every recorded sample, in recording order.
func (l *MotionLog) Samples() []decode.MotionSample {
	return l.samples
}

// Len reports the number of distinct samples recorded.
func (l *MotionLog) Len() int {
	return len(l.samples)
}
