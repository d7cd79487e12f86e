package ek60

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/alitto/pond"

	"github.com/echosounder/go-ek60/decode"
)

// Instant re-exports decode.Instant so callers of the aggregator's public
// API don't need to import the decode subpackage directly.
type Instant = decode.Instant

// ReadOptions narrows a ReadRaw call: every non-zero field restricts what
// gets ingested, matching spec section 6.3's include/exclude/time-window/
// datagram-type/NMEA-preference surface.
type ReadOptions struct {
	IncludeChannels []string // empty == include every channel
	ExcludeChannels []string
	IncludeFrequencies []float64 // Hz; empty == no frequency filter
	StartTime       Instant
	EndTime         Instant // zero StartTime/EndTime == no time window
	DatagramTypes   []string // empty == every known type; see decode.Tag* constants
	PositionTypes   []string // not read: positions always resolve via positionPreference
	SpeedTypes      []string // not read: speeds always resolve via speedPreference
	Workers         int      // not read: batchRows runs one worker per pulse_length group, at most 4
}

// channelAllowed reports whether channelID/frequency pass the options'
// include/exclude filters.
func (o ReadOptions) channelAllowed(channelID string, frequency float64) bool {
	if len(o.IncludeChannels) > 0 {
		found := false
		for _, c := range o.IncludeChannels {
			if c == channelID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range o.ExcludeChannels {
		if c == channelID {
			return false
		}
	}
	if len(o.IncludeFrequencies) > 0 {
		found := false
		for _, f := range o.IncludeFrequencies {
			if f == frequency {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// datagramAllowed reports whether tag passes the options' datagram-type
// filter list.
func (o ReadOptions) datagramAllowed(tag string) bool {
	if len(o.DatagramTypes) == 0 {
		return true
	}
	for _, t := range o.DatagramTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// inTimeWindow reports whether t passes the options' time window, when one
// is set (a zero StartTime and zero EndTime both together mean "no window").
func (o ReadOptions) inTimeWindow(t Instant) bool {
	if o.StartTime.IsZero() && o.EndTime.IsZero() {
		return true
	}
	if !o.StartTime.IsZero() && t.Before(o.StartTime) {
		return false
	}
	if !o.EndTime.IsZero() && t.After(o.EndTime) {
		return false
	}
	return true
}

// EK60 is the top-level container: every channel's ping store plus the
// ancillary NMEA/motion/bottom logs accumulated across one or more ReadRaw
// calls, generalizing the donor's GsfFile dispatch-loop-over-record-types
// into EK60's channel-keyed routing.
type EK60 struct {
	config   *decode.ConfigHeader
	channels map[string]*RawChannelData
	order    []string

	nmea   *NmeaLog
	motion *MotionLog
	depth  *BottomLog // DEP0
	bottom *BottomLog // BOT0
}

// New constructs an empty container.
func New() *EK60 {
	return &EK60{
		channels: make(map[string]*RawChannelData),
		nmea:     NewNmeaLog(),
		motion:   NewMotionLog(),
		depth:    NewBottomLog(true),
		bottom:   NewBottomLog(false),
	}
}

// ChannelIDs returns every channel id recorded so far, in first-seen order.
func (e *EK60) ChannelIDs() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// GetRaw returns the per-channel ping store, or ErrUnknownChannel if no
// such channel has been read.
func (e *EK60) GetRaw(channelID string) (*RawChannelData, error) {
	c, ok := e.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}
	return c, nil
}

// ReadRaw ingests one or more .raw files, applying options' filters, and
// returns a LoadReport summarizing what was read. CON0 (and any CON1) must
// be the leading record(s) of each file per spec section 6.1; subsequent
// files' CON0 is parsed but only the first file's is retained as the
// channel-count authority DEP0/BOT0 decoding needs.
func (e *EK60) ReadRaw(paths []string, options ReadOptions) (*LoadReport, error) {
	report := newLoadReport()

	for _, path := range paths {
		fp, err := Fingerprint(path)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, fp)

		if err := e.readFile(path, options, report); err != nil {
			return report, err
		}
	}

	report.ChannelIDs = e.ChannelIDs()
	return report, nil
}

func (e *EK60) readFile(path string, options ReadOptions, report *LoadReport) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	defer f.Close()

	reader, err := decode.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}

	for {
		frame, err := reader.Read()
		if err != nil {
			if err == decode.ErrDone {
				break
			}
			return err
		}

		switch frame.Header.Tag {
		case decode.TagConfig0:
			cfg, err := decode.DecodeConfigHeader(frame.Body)
			if err != nil {
				report.addWarning("CON0 decode failed at offset %d: %v", frame.Offset, err)
				continue
			}
			if e.config == nil {
				e.config = &cfg
			}

		case decode.TagConfig1:
			// format-version-specific passthrough; nothing in SPEC_FULL's
			// components reads CON1 today, so it is intentionally dropped
			// once decoded (accepting it at all keeps a well-formed file
			// from tripping the unknown-datagram-type warning path).

		case decode.TagRaw0:
			if !options.datagramAllowed(frame.Header.Tag) {
				continue
			}
			ping, err := decode.DecodeRaw0(frame.Body, frame.Header.Time)
			if err != nil {
				report.addWarning("RAW0 decode failed at offset %d: %v", frame.Offset, err)
				continue
			}
			if !options.inTimeWindow(ping.Time) {
				continue
			}
			channelID, freq := e.resolveChannel(ping.Channel)
			if channelID == "" || !options.channelAllowed(channelID, freq) {
				continue
			}
			store, ok := e.channels[channelID]
			if !ok {
				store = NewRawChannelData(channelID)
				e.channels[channelID] = store
				e.order = append(e.order, channelID)
			}
			store.AppendPing(ping)
			report.accumulatePing(ping.Time)

		case decode.TagNmea0:
			if !options.datagramAllowed(frame.Header.Tag) {
				continue
			}
			nmea := decode.DecodeNmea0(frame.Body, frame.Header.Time)
			if !options.inTimeWindow(nmea.Time) {
				continue
			}
			if err := e.nmea.Append(nmea.Time, nmea.Text); err != nil {
				report.addWarning("NME0 parse failed at offset %d: %v", frame.Offset, err)
			}

		case decode.TagTag0:
			if !options.datagramAllowed(frame.Header.Tag) {
				continue
			}
			// TAG0 annotations are accepted and discarded: nothing in
			// EK60 stores their text.

		case decode.TagMru0:
			if !options.datagramAllowed(frame.Header.Tag) {
				continue
			}
			motion, err := decode.DecodeMru0(frame.Body, frame.Header.Time)
			if err != nil {
				report.addWarning("MRU0 decode failed at offset %d: %v", frame.Offset, err)
				continue
			}
			if !options.inTimeWindow(motion.Time) {
				continue
			}
			e.motion.Append(motion)

		case decode.TagDepth0:
			if !options.datagramAllowed(frame.Header.Tag) || e.config == nil {
				continue
			}
			sample, err := decode.DecodeBottom(frame.Body, frame.Header.Time, len(e.config.Transceivers), true)
			if err != nil {
				report.addWarning("DEP0 decode failed at offset %d: %v", frame.Offset, err)
				continue
			}
			e.depth.Append(sample)

		case decode.TagBottom0:
			if !options.datagramAllowed(frame.Header.Tag) || e.config == nil {
				continue
			}
			sample, err := decode.DecodeBottom(frame.Body, frame.Header.Time, len(e.config.Transceivers), false)
			if err != nil {
				report.addWarning("BOT0 decode failed at offset %d: %v", frame.Offset, err)
				continue
			}
			e.bottom.Append(sample)

		default:
			report.addWarning("unknown datagram type %q at offset %d", frame.Header.Tag, frame.Offset)
		}
	}

	for _, fix := range e.positionsOrWarn(report, options) {
		report.accumulatePosition(fix.Latitude, fix.Longitude)
	}

	return nil
}

func (e *EK60) positionsOrWarn(report *LoadReport, options ReadOptions) []Fix {
	fixes, err := e.nmea.Positions()
	if err != nil {
		return nil
	}
	return fixes
}

// resolveChannel maps a RAW0 ping's 1-based channel index to its
// channel_id and frequency via the file's CON0 transceiver table.
func (e *EK60) resolveChannel(channel uint16) (string, float64) {
	if e.config == nil {
		return "", 0
	}
	idx := int(channel) - 1
	if idx < 0 || idx >= len(e.config.Transceivers) {
		return "", 0
	}
	tc := e.config.Transceivers[idx]
	return tc.ChannelID, tc.Frequency
}

// configFor returns the static TransceiverConfig for channelID, or
// ErrUnknownChannel.
func (e *EK60) configFor(channelID string) (decode.TransceiverConfig, error) {
	if e.config != nil {
		for _, tc := range e.config.Transceivers {
			if tc.ChannelID == channelID {
				return tc, nil
			}
		}
	}
	return decode.TransceiverConfig{}, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
}

// refPulseLength returns the finest (shortest) pulse_length recorded across
// pulseLengths: per spec §4.8.9 step 2, the channel's other pulse_length
// groups are resampled onto this group's resolution.
func refPulseLength(pulseLengths []float64) float64 {
	ref := pulseLengths[0]
	for _, pl := range pulseLengths {
		if pl < ref {
			ref = pl
		}
	}
	return ref
}

// batchRows resolves every pulse_length group of channelID into row-aligned
// (value, range, time) triples, one per ping: groups are concatenated in
// ascending pulse_length order, each group's pings in their recorded order.
// Groups are processed concurrently via a worker pool, mirroring the donor
// CLI's alitto/pond usage. Per spec §4.8.9 step 2, each group's rows are
// resampled onto the channel's finest pulse_length resolution before
// ToGrid's vertical alignment (step 3-4) ever sees them: dbDomain selects
// whether resampling averages in the linear (power) domain per §4.8.9 or
// directly, for already-linear quantities such as angles.
func (e *EK60) batchRows(channelID string, dbDomain bool, transform func(g *pingGroup, row int) ([]float64, []float64, error)) ([][]float64, [][]float64, []float64, error) {
	store, err := e.GetRaw(channelID)
	if err != nil {
		return nil, nil, nil, err
	}

	pulseLengths := store.PulseLengths()
	if len(pulseLengths) == 0 {
		return nil, nil, nil, nil
	}
	ref := refPulseLength(pulseLengths)

	workers := 4
	if len(pulseLengths) < workers {
		workers = len(pulseLengths)
	}
	if workers < 1 {
		workers = 1
	}

	pool := pond.New(workers, 0, pond.MinWorkers(workers), pond.Context(context.Background()))

	type groupResult struct {
		rows   [][]float64
		ranges [][]float64
		times  []float64
		order  float64
		err    error
	}
	results := make([]groupResult, len(pulseLengths))

	for gi, pl := range pulseLengths {
		gi, pl := gi, pl
		pool.Submit(func() {
			g, err := store.Group(pl)
			if err != nil {
				results[gi] = groupResult{err: err}
				return
			}
			ratio, reduce, resamplable := pulseLengthResampleMode(pl, ref)
			res := groupResult{order: pl}
			for row := 0; row < g.nPings; row++ {
				data, rng, err := transform(g, row)
				if err != nil {
					res.err = err
					break
				}
				if resamplable && ratio > 1 {
					if dbDomain {
						data = ResampleDbByRatio(data, ratio, reduce)
					} else {
						data = ResampleByRatio(data, ratio, reduce)
					}
					rng = ResampleByRatio(rng, ratio, reduce)
				}
				res.rows = append(res.rows, data)
				res.ranges = append(res.ranges, rng)
				res.times = append(res.times, float64(g.Time[row].UnixMs()))
			}
			results[gi] = res
		})
	}
	pool.StopAndWait()

	sort.Slice(results, func(i, j int) bool { return results[i].order < results[j].order })

	var rows, ranges [][]float64
	var times []float64
	for _, r := range results {
		if r.err != nil {
			return nil, nil, nil, r.err
		}
		rows = append(rows, r.rows...)
		ranges = append(ranges, r.ranges...)
		times = append(times, r.times...)
	}
	return rows, ranges, times, nil
}

// pulseLengthResampleMode decides how to bring one pulse_length group onto
// the channel's reference (finest) resolution: groups coarser than the
// reference are expanded (samples repeated) to match it; a group already at
// the reference resolution is left untouched. resamplable is false when the
// ratio isn't within isNearInt tolerance of an integer, in which case the
// caller leaves the row unresampled rather than guess at a fractional ratio.
func pulseLengthResampleMode(pulseLength, ref float64) (ratio int, reduce bool, resamplable bool) {
	if ref == 0 || pulseLength == ref {
		return 1, false, true
	}
	if pulseLength > ref {
		r := pulseLength / ref
		if !isNearInt(r) {
			return 0, false, false
		}
		return int(math.Round(r)), false, true
	}
	r := ref / pulseLength
	if !isNearInt(r) {
		return 0, false, false
	}
	return int(math.Round(r)), true, true
}

func isNearInt(x float64) bool {
	return math.Abs(x-math.Round(x)) < 1e-6
}

// GetPower returns channelID's indexed power samples converted to dB,
// aligned onto one common range/time grid via ToGrid.
func (e *EK60) GetPower(channelID string, mode AlignmentMode) (CalibratedGrid, error) {
	rows, ranges, times, err := e.batchRows(channelID, true, func(g *pingGroup, row int) ([]float64, []float64, error) {
		power := g.IndexedPower[row]
		var dbRow []float64
		if power != nil {
			dbRow = PowerRowToDb(power)
		}
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], g.SoundVelocity[row], len(dbRow))
		return dbRow, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, err
	}
	grid := ToGrid(rows, ranges, times, mode, nil, nil, nil)
	grid.ChannelID = channelID
	return grid, nil
}

// GetSv returns channelID's volume backscattering strength, aligned onto
// one common range/time grid. Pass linear=true to receive sv instead of Sv.
func (e *EK60) GetSv(channelID string, cal *Calibration, linear bool, mode AlignmentMode) (CalibratedGrid, error) {
	return e.computeAcoustic(channelID, cal, linear, mode, false)
}

// GetSp returns channelID's target strength, aligned onto one common
// range/time grid. Pass linear=true to receive sp instead of Sp.
func (e *EK60) GetSp(channelID string, cal *Calibration, linear bool, mode AlignmentMode) (CalibratedGrid, error) {
	return e.computeAcoustic(channelID, cal, linear, mode, true)
}

func (e *EK60) computeAcoustic(channelID string, cal *Calibration, linear bool, mode AlignmentMode, targetStrength bool) (CalibratedGrid, error) {
	if cal == nil {
		cal = NewCalibration()
	}
	cfg, cfgErr := e.configFor(channelID)

	rows, ranges, times, err := e.batchRows(channelID, !linear, func(g *pingGroup, row int) ([]float64, []float64, error) {
		power := g.IndexedPower[row]
		if power == nil {
			return nil, nil, nil
		}
		pDb := PowerRowToDb(power)

		var cfgGain, cfgSa, cfgPsi configFallback
		if cfgErr == nil {
			cfgGain = func() (float64, bool) { return gainForPulseLength(cfg, g.pulseLength), true }
			cfgSa = func() (float64, bool) { return saForPulseLength(cfg, g.pulseLength), true }
			cfgPsi = func() (float64, bool) { return cfg.EquivalentBeamAngle, true }
		}

		transmitPower, err := resolveCalParam(cal, "transmit_power", g, row,
			func(idx int) (float64, bool) { return g.TransmitPower[idx], true }, nil)
		if err != nil {
			return nil, nil, err
		}
		frequency, err := resolveCalParam(cal, "frequency", g, row,
			func(idx int) (float64, bool) { return g.Frequency[idx], true }, nil)
		if err != nil {
			return nil, nil, err
		}
		soundVelocity, err := resolveCalParam(cal, "sound_velocity", g, row,
			func(idx int) (float64, bool) { return g.SoundVelocity[idx], true }, nil)
		if err != nil {
			return nil, nil, err
		}
		absorption, err := resolveCalParam(cal, "absorption_coefficient", g, row,
			func(idx int) (float64, bool) { return g.AbsorptionCoefficient[idx], true }, nil)
		if err != nil {
			return nil, nil, err
		}
		gain, err := resolveCalParam(cal, "gain", g, row, nil, cfgGain)
		if err != nil {
			return nil, nil, err
		}
		saCorrection, err := resolveCalParam(cal, "sa_correction", g, row, nil, cfgSa)
		if err != nil {
			return nil, nil, err
		}
		psi, err := resolveCalParam(cal, "equivalent_beam_angle", g, row, nil, cfgPsi)
		if err != nil {
			return nil, nil, err
		}

		m := soundVelocity * g.SampleInterval[row] / 2
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], soundVelocity, len(pDb))

		params := SonarEquationParams{
			TransmitPower:         transmitPower,
			Frequency:             frequency,
			SoundVelocity:         soundVelocity,
			PulseLength:           g.pulseLength,
			EquivalentBeamAngleDb: psi,
			Gain:                  gain,
			SaCorrection:          saCorrection,
			AbsorptionDbPerM:      absorption,
		}

		var result []float64
		if targetStrength {
			params.TvgRangeCorrection = DefaultSpTvgRangeCorrection
			result = Sp(pDb, rng, m, params)
			if linear {
				result = SpToLinear(result)
			}
		} else {
			params.TvgRangeCorrection = DefaultSvTvgRangeCorrection
			result = Sv(pDb, rng, m, params)
			if linear {
				result = SvToLinear(result)
			}
		}
		return result, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, err
	}

	grid := ToGrid(rows, ranges, times, mode, nil, nil, nil)
	grid.ChannelID = channelID
	return grid, nil
}

// resolveCalParam resolves one calibration parameter for a single ping row
// within a pulse_length group. Pulse-length groups keep independent row
// numbering (pingstore.go), so n_pings/indices are scoped to the group
// itself rather than a cross-group absolute ping index.
func resolveCalParam(cal *Calibration, name string, g *pingGroup, row int, raw rawFallback, cfg configFallback) (float64, error) {
	out, err := cal.resolve(name, g.nPings, []int{row}, raw, cfg)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// gainForPulseLength selects cfg's gain table entry matching pulseLength,
// falling back to the table's first entry if no exact match is found.
func gainForPulseLength(cfg decode.TransceiverConfig, pulseLength float64) float64 {
	for i, pl := range cfg.PulseLengthTable {
		if pl == pulseLength {
			return cfg.GainTable[i]
		}
	}
	return cfg.GainTable[0]
}

func saForPulseLength(cfg decode.TransceiverConfig, pulseLength float64) float64 {
	for i, pl := range cfg.PulseLengthTable {
		if pl == pulseLength {
			return cfg.SaCorrectionTable[i]
		}
	}
	return cfg.SaCorrectionTable[0]
}

// GetElectricalAngles returns channelID's decoded alongship/athwartship
// electrical angles, one CalibratedGrid each, aligned onto a common grid.
func (e *EK60) GetElectricalAngles(channelID string, mode AlignmentMode) (along, athwart CalibratedGrid, err error) {
	alongRows, ranges, times, err := e.batchRows(channelID, false, func(g *pingGroup, row int) ([]float64, []float64, error) {
		packed := g.IndexedAngle[row]
		if packed == nil {
			return nil, nil, nil
		}
		out := make([]float64, len(packed))
		for i, v := range packed {
			a, _ := DecodeElectricalAngle(v)
			out[i] = a
		}
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], g.SoundVelocity[row], len(out))
		return out, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, CalibratedGrid{}, err
	}
	athwartRows, _, _, err := e.batchRows(channelID, false, func(g *pingGroup, row int) ([]float64, []float64, error) {
		packed := g.IndexedAngle[row]
		if packed == nil {
			return nil, nil, nil
		}
		out := make([]float64, len(packed))
		for i, v := range packed {
			_, at := DecodeElectricalAngle(v)
			out[i] = at
		}
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], g.SoundVelocity[row], len(out))
		return out, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, CalibratedGrid{}, err
	}

	along = ToGrid(alongRows, ranges, times, mode, nil, nil, nil)
	along.ChannelID = channelID
	athwart = ToGrid(athwartRows, ranges, times, mode, nil, nil, nil)
	athwart.ChannelID = channelID
	return along, athwart, nil
}

// GetPhysicalAngles resolves per-axis sensitivity/offset through cal (or the
// channel's static config when cal has no override) for each ping row, then
// converts that row's electrical angles before gridding — the per-row
// resolution has to happen here rather than after GetElectricalAngles,
// since ToGrid's output no longer carries a ping-to-pulse_length-group
// association.
func (e *EK60) GetPhysicalAngles(channelID string, cal *Calibration, mode AlignmentMode) (along, athwart CalibratedGrid, err error) {
	if cal == nil {
		cal = NewCalibration()
	}
	cfg, cfgErr := e.configFor(channelID)

	var cfgSensAlong, cfgSensAthwart, cfgOffAlong, cfgOffAthwart configFallback
	if cfgErr == nil {
		cfgSensAlong = func() (float64, bool) { return cfg.AngleSensitivityAlongship, true }
		cfgSensAthwart = func() (float64, bool) { return cfg.AngleSensitivityAthwartship, true }
		cfgOffAlong = func() (float64, bool) { return cfg.AngleOffsetAlongship, true }
		cfgOffAthwart = func() (float64, bool) { return cfg.AngleOffsetAthwartship, true }
	}

	alongRows, ranges, times, err := e.batchRows(channelID, false, func(g *pingGroup, row int) ([]float64, []float64, error) {
		packed := g.IndexedAngle[row]
		if packed == nil {
			return nil, nil, nil
		}
		sens, err := resolveCalParam(cal, "angle_sensitivity_alongship", g, row, nil, cfgSensAlong)
		if err != nil {
			return nil, nil, err
		}
		off, err := resolveCalParam(cal, "angle_offset_alongship", g, row, nil, cfgOffAlong)
		if err != nil {
			return nil, nil, err
		}
		out := make([]float64, len(packed))
		for i, v := range packed {
			a, _ := DecodeElectricalAngle(v)
			out[i] = PhysicalAngle(a, sens, off)
		}
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], g.SoundVelocity[row], len(out))
		return out, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, CalibratedGrid{}, err
	}

	athwartRows, _, _, err := e.batchRows(channelID, false, func(g *pingGroup, row int) ([]float64, []float64, error) {
		packed := g.IndexedAngle[row]
		if packed == nil {
			return nil, nil, nil
		}
		sens, err := resolveCalParam(cal, "angle_sensitivity_athwartship", g, row, nil, cfgSensAthwart)
		if err != nil {
			return nil, nil, err
		}
		off, err := resolveCalParam(cal, "angle_offset_athwartship", g, row, nil, cfgOffAthwart)
		if err != nil {
			return nil, nil, err
		}
		out := make([]float64, len(packed))
		for i, v := range packed {
			_, at := DecodeElectricalAngle(v)
			out[i] = PhysicalAngle(at, sens, off)
		}
		rng := RangeVector(g.SampleOffset[row], g.SampleInterval[row], g.SoundVelocity[row], len(out))
		return out, rng, nil
	})
	if err != nil {
		return CalibratedGrid{}, CalibratedGrid{}, err
	}

	along = ToGrid(alongRows, ranges, times, mode, nil, nil, nil)
	along.ChannelID = channelID
	athwart = ToGrid(athwartRows, ranges, times, mode, nil, nil, nil)
	athwart.ChannelID = channelID
	return along, athwart, nil
}

// Interpolate resolves one NMEA meta-type ("position", "speed", or a
// concrete sentence type understood by NmeaLog.ByType) onto grid's ping
// time vector, returning one vector per resolved field.
func (e *EK60) Interpolate(grid CalibratedGrid, metaOrType string) (map[string][]float64, error) {
	dstTimes := make([]Instant, len(grid.Time))
	for i, ms := range grid.Time {
		dstTimes[i] = NewInstant(int64(ms))
	}

	nanVector := func() []float64 {
		out := make([]float64, len(dstTimes))
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	switch metaOrType {
	case "position":
		fixes, err := e.nmea.Positions()
		if err != nil {
			// no GGA/GLL/RMC recorded at all: an absent position source is
			// a boundary condition, not a load failure.
			return map[string][]float64{"latitude": nanVector(), "longitude": nanVector()}, nil
		}
		fixes = RejectOutliers(fixes, DefaultMaxGpsJumpNmi, DefaultMaxOutlierIterations)
		srcTimes := make([]Instant, len(fixes))
		lats := make([]float64, len(fixes))
		lons := make([]float64, len(fixes))
		for i, f := range fixes {
			srcTimes[i] = f.Time
			lats[i] = f.Latitude
			lons[i] = f.Longitude
		}
		return map[string][]float64{
			"latitude":  LinearInterpolate(srcTimes, lats, dstTimes),
			"longitude": LinearInterpolate(srcTimes, lons, dstTimes),
		}, nil

	case "speed":
		speeds, err := e.nmea.Speeds()
		if err != nil {
			return map[string][]float64{"knots": nanVector()}, nil
		}
		srcTimes := make([]Instant, len(speeds))
		knots := make([]float64, len(speeds))
		for i, s := range speeds {
			srcTimes[i] = s.Time
			knots[i] = s.Knots
		}
		return map[string][]float64{"knots": LinearInterpolate(srcTimes, knots, dstTimes)}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported interpolation field %q", ErrNmeaTypeUnavailable, metaOrType)
	}
}

// NewInstant constructs an Instant from a Unix-epoch millisecond count,
// re-exported from decode for callers building ReadOptions time windows
// without importing the decode subpackage.
func NewInstant(unixMs int64) Instant {
	return decode.NewInstant(unixMs)
}
