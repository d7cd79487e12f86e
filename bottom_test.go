package ek60

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/echosounder/go-ek60/decode"
)

func TestBottomLogAppendAndDepthAt(t *testing.T) {
	log := NewBottomLog(true)
	log.Append(decode.BottomSample{Time: decode.NewInstant(0), Depth: []float64{120.5, 118.2}, Reflectivity: []float64{-12, -14}})
	log.Append(decode.BottomSample{Time: decode.NewInstant(1000), Depth: []float64{121.0, 119.0}, Reflectivity: []float64{-11, -13}})

	assert.True(t, log.HasReflectivity())
	assert.Equal(t, []float64{120.5, 118.2}, log.DepthAt(0))
	assert.Len(t, log.Samples(), 2)
}

func TestBottomLogWithoutReflectivity(t *testing.T) {
	log := NewBottomLog(false)
	log.Append(decode.BottomSample{Time: decode.NewInstant(0), Depth: []float64{50}})
	assert.False(t, log.HasReflectivity())
	assert.Nil(t, log.Samples()[0].Reflectivity)
}

func TestMotionLogDropsDuplicateTimestamp(t *testing.T) {
	log := NewMotionLog()
	log.Append(decode.MotionSample{Time: decode.NewInstant(0), Heave: 1})
	log.Append(decode.MotionSample{Time: decode.NewInstant(0), Heave: 2})
	log.Append(decode.MotionSample{Time: decode.NewInstant(1000), Heave: 3})

	assert.Equal(t, 2, log.Len())
	samples := log.Samples()
	assert.Equal(t, 2.0, samples[0].Heave)
	assert.Equal(t, 3.0, samples[1].Heave)
}
