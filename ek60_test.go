package ek60

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// frame builds one length-delimited datagram: [len][tag][filetime][body][len].
func frame(tag string, body []byte) []byte {
	payload := make([]byte, 0, 12+len(body))
	payload = append(payload, []byte(tag)...)
	var ft [8]byte
	binary.LittleEndian.PutUint32(ft[0:4], 0xD53E8000)
	binary.LittleEndian.PutUint32(ft[4:8], 0x01D89A54)
	payload = append(payload, ft[:]...)
	payload = append(payload, body...)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	out := make([]byte, 0, 4+len(payload)+4)
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	out = append(out, lenBuf[:]...)
	return out
}

func asciiField128(s string) []byte {
	out := make([]byte, 128)
	copy(out, s)
	return out
}

func con0Body(channelID string) []byte {
	var buf bytes.Buffer
	buf.Write(asciiField128("Survey"))
	buf.Write(asciiField128("Transect"))
	buf.Write(asciiField128("EK60"))
	buf.Write(asciiField128("2.0"))
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], 1)
	buf.Write(count[:])

	buf.Write(asciiField128(channelID))
	fields := []any{
		int32(1),      // BeamType (split)
		float32(38000),
		float32(26.5), // Gain
		float32(-20.7),
		float32(7.1), float32(7.1),
		float32(21.9), float32(21.9),
		float32(0), float32(0),
		float32(0), float32(0), float32(0),
		float32(0), float32(0), float32(1),
		[5]float32{0.001024, 0, 0, 0, 0},
		[5]float32{26.5, 0, 0, 0, 0},
		[5]float32{-0.7, 0, 0, 0, 0},
	}
	for _, f := range fields {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	out := buf.Bytes()
	total := 512 + 4 + 320 // prefix + transceiver record
	if len(out) < total {
		out = append(out, make([]byte, total-len(out))...)
	}
	return out
}

func raw0Body(channel uint16, pulseLength float32, count uint32, power []int16) []byte {
	var buf bytes.Buffer
	hdr := []any{
		channel,
		uint16(0x1), // mode: power only
		float32(10), float32(38000), float32(2000), pulseLength,
		float32(2425), float32(0.000190425), float32(1497), float32(0.00986),
		float32(0), float32(0), float32(0), float32(10), float32(0), float32(0), float32(0),
		uint16(0),
		[6]byte{},
		uint32(0), count,
	}
	for _, f := range hdr {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	_ = binary.Write(&buf, binary.LittleEndian, power)
	return buf.Bytes()
}

func raw0BodyWithAngle(channel uint16, pulseLength float32, count uint32, power []int16, angle []uint16) []byte {
	var buf bytes.Buffer
	hdr := []any{
		channel,
		uint16(0x3), // mode: power + angle
		float32(10), float32(38000), float32(2000), pulseLength,
		float32(2425), float32(0.000190425), float32(1497), float32(0.00986),
		float32(0), float32(0), float32(0), float32(10), float32(0), float32(0), float32(0),
		uint16(0),
		[6]byte{},
		uint32(0), count,
	}
	for _, f := range hdr {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	_ = binary.Write(&buf, binary.LittleEndian, power)
	_ = binary.Write(&buf, binary.LittleEndian, angle)
	return buf.Bytes()
}

func writeTempRaw(t *testing.T, name string, frames ...[]byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	for _, f := range frames {
		buf.Write(f)
	}
	assert.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestReadRawConfigOnlyYieldsNoChannelsNoErrors(t *testing.T) {
	path := writeTempRaw(t, "config-only.raw", frame("CON0", con0Body("ES38B")))

	e := New()
	report, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)
	assert.Empty(t, e.ChannelIDs())
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 0, report.PingCount)
}

func TestReadRawDecodesChannelAndPings(t *testing.T) {
	power := []int16{10, 20, 30, 40}
	path := writeTempRaw(t, "one-channel.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 4, power)),
		frame("RAW0", raw0Body(1, 0.001024, 4, power)),
	)

	e := New()
	report, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"ES38B"}, e.ChannelIDs())
	assert.Equal(t, 2, report.PingCount)

	raw, err := e.GetRaw("ES38B")
	assert.NoError(t, err)
	g, err := raw.Group(0.001024)
	assert.NoError(t, err)
	assert.Equal(t, 2, g.nPings)
}

func TestReadRawKeepsDuplicateTimestampPingsInChannel(t *testing.T) {
	// both RAW0 frames in the fixture carry the same FILETIME; the ping
	// store must keep both rows even though MotionLog would collapse an
	// identically-timestamped MRU0 pair.
	power := []int16{1, 2, 3}
	path := writeTempRaw(t, "dup-time.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 3, power)),
		frame("RAW0", raw0Body(1, 0.001024, 3, power)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	raw, err := e.GetRaw("ES38B")
	assert.NoError(t, err)
	g, err := raw.Group(0.001024)
	assert.NoError(t, err)
	assert.Equal(t, 2, g.nPings)
	assert.True(t, g.Time[0].Equal(g.Time[1]))
}

func TestGetPowerEndToEnd(t *testing.T) {
	power := []int16{2560, 2560}
	path := writeTempRaw(t, "power.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 2, power)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	grid, err := e.GetPower("ES38B", AlignTransducerFace)
	assert.NoError(t, err)
	assert.Equal(t, "ES38B", grid.ChannelID)
	assert.Len(t, grid.Data, 1)
	assert.InDelta(t, 30.103, grid.Data[0][0], 1e-3)
}

func TestInterpolatePositionAllNaNWithoutNmea(t *testing.T) {
	power := []int16{1, 2}
	path := writeTempRaw(t, "no-nmea.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 2, power)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	grid, err := e.GetPower("ES38B", AlignTransducerFace)
	assert.NoError(t, err)

	out, err := e.Interpolate(grid, "position")
	assert.NoError(t, err)
	assert.Len(t, out["latitude"], len(grid.Time))
	for _, v := range out["latitude"] {
		assert.True(t, v != v, "expected NaN")
	}
	for _, v := range out["longitude"] {
		assert.True(t, v != v, "expected NaN")
	}
}

func TestReadRawUnknownChannelError(t *testing.T) {
	e := New()
	_, err := e.GetRaw("nope")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestGetSvScalarCalibrationOverrideChangesResult(t *testing.T) {
	// samples 0 and 1 lie within the 2-sample TVG range correction and are
	// NaN; sample 3 has a positive effective range.
	power := []int16{2560, 2560, 2560, 2560}
	path := writeTempRaw(t, "sv-cal.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 4, power)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	uncal, err := e.GetSv("ES38B", nil, false, AlignTransducerFace)
	assert.NoError(t, err)

	cal := NewCalibration().WithScalar("gain", uncal.Data[0][3]) // nonsense gain, just needs to differ from cfg's 26.5
	calibrated, err := e.GetSv("ES38B", cal, false, AlignTransducerFace)
	assert.NoError(t, err)

	assert.NotEqual(t, uncal.Data[0][3], calibrated.Data[0][3])
	// gain enters the sonar equation as -2*Gain, so the shift is exactly
	// twice the difference between the overridden and config gain values.
	assert.InDelta(t, uncal.Data[0][3]-2*(uncal.Data[0][3]-26.5), calibrated.Data[0][3], 1e-9)
}

func TestGetSvCalibrationVectorWrongLengthErrors(t *testing.T) {
	power := []int16{2560, 2560}
	path := writeTempRaw(t, "sv-cal-bad-len.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0Body(1, 0.001024, 2, power)),
		frame("RAW0", raw0Body(1, 0.001024, 2, power)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	// the group has 2 pings; a 3-element vector matches neither n_pings nor
	// any single-row selection.
	cal := NewCalibration().WithVector("gain", []float64{1, 2, 3})
	_, err = e.GetSv("ES38B", cal, false, AlignTransducerFace)
	assert.ErrorIs(t, err, ErrInvalidCalibrationLength)
}

func TestPulseLengthResampleMode(t *testing.T) {
	ratio, reduce, ok := pulseLengthResampleMode(0.002048, 0.001024)
	assert.True(t, ok)
	assert.Equal(t, 2, ratio)
	assert.False(t, reduce) // coarser than reference: expand

	ratio, _, ok = pulseLengthResampleMode(0.001024, 0.001024)
	assert.True(t, ok)
	assert.Equal(t, 1, ratio)

	_, _, ok = pulseLengthResampleMode(0.0015, 0.001024)
	assert.False(t, ok) // not an integer ratio
}

func TestGetPhysicalAnglesCalibrationOverride(t *testing.T) {
	power := []int16{2560, 2560}
	angle := []uint16{0x1002, 0x0804} // along/athwart packed bytes
	path := writeTempRaw(t, "angles-cal.raw",
		frame("CON0", con0Body("ES38B")),
		frame("RAW0", raw0BodyWithAngle(1, 0.001024, 2, power, angle)),
	)

	e := New()
	_, err := e.ReadRaw([]string{path}, ReadOptions{})
	assert.NoError(t, err)

	uncal, _, err := e.GetPhysicalAngles("ES38B", nil, AlignTransducerFace)
	assert.NoError(t, err)

	cal := NewCalibration().WithScalar("angle_sensitivity_alongship", 2 * 21.9)
	calibrated, _, err := e.GetPhysicalAngles("ES38B", cal, AlignTransducerFace)
	assert.NoError(t, err)

	assert.NotEqual(t, uncal.Data[0][0], calibrated.Data[0][0])
}
