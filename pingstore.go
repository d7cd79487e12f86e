package ek60

import (
	"fmt"

	"github.com/echosounder/go-ek60/decode"
)

// defaultChunkRows is the default vertical (ping) pre-allocation chunk,
// sized to avoid reallocating the dense matrices on every single ping
// append during normal file ingestion.
const defaultChunkRows = 500

// PowerPad is the sentinel written into unused IndexedPower matrix cells
// (columns beyond a given ping's own sample count).
const PowerPad int16 = -32768 // math.MinInt16; RAW0 indexed power never reaches this magnitude in practice

// AnglePad is the sentinel written into unused IndexedAngle matrix cells.
const AnglePad uint16 = 0xFFFF

// pingGroup is the dense store for every ping sharing one pulse_length
// within a channel: EK60 channels running interleaved pulse lengths (e.g.
// dual-range survey modes) need their samples kept apart since each
// pulse_length corresponds to a distinct range resolution.
type pingGroup struct {
	pulseLength float64

	nPings  int
	nCols   int // widest sample count seen so far
	rowCap  int

	Time                  []decode.Instant
	SampleOffset          []uint32
	SampleCount           []uint32
	TransducerDepth       []float64
	Frequency             []float64
	TransmitPower         []float64
	Bandwidth             []float64
	SampleInterval        []float64
	SoundVelocity         []float64
	AbsorptionCoefficient []float64
	Heave                 []float64
	TxRoll                []float64
	TxPitch               []float64
	Temperature           []float64
	RxRoll                []float64
	RxPitch               []float64
	Heading               []float64

	IndexedPower [][]int16  // nil row when the ping carried no power samples
	IndexedAngle [][]uint16 // nil row when the ping carried no angle samples

	rolling  bool
	capacity int // only meaningful when rolling is true; 0 == unbounded
	next     int // next write index once capacity is reached, for rolling mode
}

func newPingGroup(pulseLength float64) *pingGroup {
	return &pingGroup{pulseLength: pulseLength}
}

func (g *pingGroup) growRows(minRows int) {
	if g.rowCap >= minRows {
		return
	}
	newCap := g.rowCap
	if newCap == 0 {
		newCap = defaultChunkRows
	}
	for newCap < minRows {
		newCap += defaultChunkRows
	}
	g.Time = append(g.Time, make([]decode.Instant, newCap-g.rowCap)...)
	g.SampleOffset = append(g.SampleOffset, make([]uint32, newCap-g.rowCap)...)
	g.SampleCount = append(g.SampleCount, make([]uint32, newCap-g.rowCap)...)
	g.TransducerDepth = append(g.TransducerDepth, make([]float64, newCap-g.rowCap)...)
	g.Frequency = append(g.Frequency, make([]float64, newCap-g.rowCap)...)
	g.TransmitPower = append(g.TransmitPower, make([]float64, newCap-g.rowCap)...)
	g.Bandwidth = append(g.Bandwidth, make([]float64, newCap-g.rowCap)...)
	g.SampleInterval = append(g.SampleInterval, make([]float64, newCap-g.rowCap)...)
	g.SoundVelocity = append(g.SoundVelocity, make([]float64, newCap-g.rowCap)...)
	g.AbsorptionCoefficient = append(g.AbsorptionCoefficient, make([]float64, newCap-g.rowCap)...)
	g.Heave = append(g.Heave, make([]float64, newCap-g.rowCap)...)
	g.TxRoll = append(g.TxRoll, make([]float64, newCap-g.rowCap)...)
	g.TxPitch = append(g.TxPitch, make([]float64, newCap-g.rowCap)...)
	g.Temperature = append(g.Temperature, make([]float64, newCap-g.rowCap)...)
	g.RxRoll = append(g.RxRoll, make([]float64, newCap-g.rowCap)...)
	g.RxPitch = append(g.RxPitch, make([]float64, newCap-g.rowCap)...)
	g.Heading = append(g.Heading, make([]float64, newCap-g.rowCap)...)
	g.IndexedPower = append(g.IndexedPower, make([][]int16, newCap-g.rowCap)...)
	g.IndexedAngle = append(g.IndexedAngle, make([][]uint16, newCap-g.rowCap)...)
	g.rowCap = newCap
}

// widenColumns grows every already-appended row's matrices to newCols,
// padding the new cells with the sentinel values. Called whenever a new
// ping's sample count exceeds every previous ping's in this group.
func (g *pingGroup) widenColumns(newCols int) {
	if newCols <= g.nCols {
		return
	}
	for i := 0; i < g.nPings; i++ {
		if row := g.IndexedPower[i]; row != nil {
			g.IndexedPower[i] = padInt16Row(row, newCols)
		}
		if row := g.IndexedAngle[i]; row != nil {
			g.IndexedAngle[i] = padUint16Row(row, newCols)
		}
	}
	g.nCols = newCols
}

func padInt16Row(row []int16, n int) []int16 {
	if len(row) >= n {
		return row
	}
	out := make([]int16, n)
	copy(out, row)
	for i := len(row); i < n; i++ {
		out[i] = PowerPad
	}
	return out
}

func padUint16Row(row []uint16, n int) []uint16 {
	if len(row) >= n {
		return row
	}
	out := make([]uint16, n)
	copy(out, row)
	for i := len(row); i < n; i++ {
		out[i] = AnglePad
	}
	return out
}

// append writes one ping's worth of data into the group, growing rows and
// widening columns as needed. In rolling mode, once capacity pings have
// been appended, further pings overwrite the oldest row in place instead
// of growing further.
func (g *pingGroup) append(p decode.RawSample) {
	row := g.nPings
	if g.rolling && g.capacity > 0 && g.nPings >= g.capacity {
		row = g.next
		g.next = (g.next + 1) % g.capacity
	} else {
		g.growRows(g.nPings + 1)
		g.nPings++
	}

	count := int(p.SampleCount)
	if count > g.nCols {
		g.widenColumns(count)
	}

	g.Time[row] = p.Time
	g.SampleOffset[row] = p.SampleOffset
	g.SampleCount[row] = p.SampleCount
	g.TransducerDepth[row] = p.TransducerDepth
	g.Frequency[row] = p.Frequency
	g.TransmitPower[row] = p.TransmitPower
	g.Bandwidth[row] = p.Bandwidth
	g.SampleInterval[row] = p.SampleInterval
	g.SoundVelocity[row] = p.SoundVelocity
	g.AbsorptionCoefficient[row] = p.AbsorptionCoefficient
	g.Heave[row] = p.Heave
	g.TxRoll[row] = p.TxRoll
	g.TxPitch[row] = p.TxPitch
	g.Temperature[row] = p.Temperature
	g.RxRoll[row] = p.RxRoll
	g.RxPitch[row] = p.RxPitch
	g.Heading[row] = p.Heading

	if p.IndexedPower != nil {
		g.IndexedPower[row] = padInt16Row(append([]int16(nil), p.IndexedPower...), g.nCols)
	} else {
		g.IndexedPower[row] = nil
	}
	if p.IndexedAngle != nil {
		g.IndexedAngle[row] = padUint16Row(append([]uint16(nil), p.IndexedAngle...), g.nCols)
	} else {
		g.IndexedAngle[row] = nil
	}
}

// trim releases unused row capacity once a channel is known to be
// finished loading, matching the teacher's "avoid carrying oversized
// backing arrays past ingestion" convention.
func (g *pingGroup) trim() {
	if g.rowCap == g.nPings {
		return
	}
	g.Time = append([]decode.Instant(nil), g.Time[:g.nPings]...)
	g.SampleOffset = append([]uint32(nil), g.SampleOffset[:g.nPings]...)
	g.SampleCount = append([]uint32(nil), g.SampleCount[:g.nPings]...)
	g.TransducerDepth = append([]float64(nil), g.TransducerDepth[:g.nPings]...)
	g.Frequency = append([]float64(nil), g.Frequency[:g.nPings]...)
	g.TransmitPower = append([]float64(nil), g.TransmitPower[:g.nPings]...)
	g.Bandwidth = append([]float64(nil), g.Bandwidth[:g.nPings]...)
	g.SampleInterval = append([]float64(nil), g.SampleInterval[:g.nPings]...)
	g.SoundVelocity = append([]float64(nil), g.SoundVelocity[:g.nPings]...)
	g.AbsorptionCoefficient = append([]float64(nil), g.AbsorptionCoefficient[:g.nPings]...)
	g.Heave = append([]float64(nil), g.Heave[:g.nPings]...)
	g.TxRoll = append([]float64(nil), g.TxRoll[:g.nPings]...)
	g.TxPitch = append([]float64(nil), g.TxPitch[:g.nPings]...)
	g.Temperature = append([]float64(nil), g.Temperature[:g.nPings]...)
	g.RxRoll = append([]float64(nil), g.RxRoll[:g.nPings]...)
	g.RxPitch = append([]float64(nil), g.RxPitch[:g.nPings]...)
	g.Heading = append([]float64(nil), g.Heading[:g.nPings]...)
	g.IndexedPower = append([][]int16(nil), g.IndexedPower[:g.nPings]...)
	g.IndexedAngle = append([][]uint16(nil), g.IndexedAngle[:g.nPings]...)
	g.rowCap = g.nPings
}

// RawChannelData is the per-channel ping store (spec component D): every
// ping recorded for one channel_id, grouped by pulse_length since a
// channel's range resolution (and so its sample matrix shape) follows the
// transmitted pulse length.
type RawChannelData struct {
	ChannelID string

	groups      map[float64]*pingGroup
	pulseOrder  []float64

	rolling  bool
	capacity int
}

// NewRawChannelData constructs an empty ping store for one channel.
func NewRawChannelData(channelID string) *RawChannelData {
	return &RawChannelData{ChannelID: channelID, groups: make(map[float64]*pingGroup)}
}

// EnableRolling switches the store into fixed-capacity rolling mode,
// suited to a continuous live feed where only the most recent `capacity`
// pings per pulse_length are worth retaining.
func (c *RawChannelData) EnableRolling(capacity int) {
	c.rolling = true
	c.capacity = capacity
	for _, g := range c.groups {
		g.rolling = true
		g.capacity = capacity
	}
}

// AppendPing routes a decoded RAW0 ping into the group matching its
// pulse_length, creating the group on first use.
func (c *RawChannelData) AppendPing(p decode.RawSample) {
	g, ok := c.groups[p.PulseLength]
	if !ok {
		g = newPingGroup(p.PulseLength)
		g.rolling = c.rolling
		g.capacity = c.capacity
		c.groups[p.PulseLength] = g
		c.pulseOrder = append(c.pulseOrder, p.PulseLength)
	}
	g.append(p)
}

// PulseLengths returns the distinct pulse_length values recorded, in
// first-seen order.
func (c *RawChannelData) PulseLengths() []float64 {
	out := make([]float64, len(c.pulseOrder))
	copy(out, c.pulseOrder)
	return out
}

// Group returns the dense store for one pulse_length, matched within 1 µs
// (so a float32 value decoded from RAW0 matches its decimal literal), or
// ErrPulseLengthMismatch if the channel never recorded that pulse length.
func (c *RawChannelData) Group(pulseLength float64) (*pingGroup, error) {
	if g, ok := c.groups[pulseLength]; ok {
		return g, nil
	}
	for pl, g := range c.groups {
		if d := pl - pulseLength; d < 1e-6 && d > -1e-6 {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrPulseLengthMismatch, pulseLength)
}

// PingCount returns the total number of pings recorded across every
// pulse_length group.
func (c *RawChannelData) PingCount() int {
	total := 0
	for _, g := range c.groups {
		total += g.nPings
	}
	return total
}

// Trim releases unused capacity in every pulse_length group. Call once a
// channel is known to have finished loading.
func (c *RawChannelData) Trim() {
	for _, g := range c.groups {
		g.trim()
	}
}

// IndexRange is an inclusive-exclusive [Lo, Hi) span of ping row indices
// into one pulse_length group.
type IndexRange struct {
	Lo, Hi int
}

// GetIndexRange resolves the row index span covering [start, end] Instant
// bounds within a pulse_length group's Time vector, which is assumed
// monotonically non-decreasing (true for any well-formed RAW0 sequence).
func (g *pingGroup) GetIndexRange(start, end decode.Instant) (IndexRange, error) {
	lo := 0
	for lo < g.nPings && g.Time[lo].Before(start) {
		lo++
	}
	hi := g.nPings
	for hi > lo && g.Time[hi-1].After(end) {
		hi--
	}
	if hi < lo {
		return IndexRange{}, ErrInvertedRange
	}
	return IndexRange{Lo: lo, Hi: hi}, nil
}

// PowerView returns the dense IndexedPower sub-matrix for rows [r.Lo, r.Hi),
// sharing backing storage with the group (no copy).
func (g *pingGroup) PowerView(r IndexRange) [][]int16 {
	return g.IndexedPower[r.Lo:r.Hi]
}

// AngleView returns the dense IndexedAngle sub-matrix for rows [r.Lo, r.Hi).
func (g *pingGroup) AngleView(r IndexRange) [][]uint16 {
	return g.IndexedAngle[r.Lo:r.Hi]
}
