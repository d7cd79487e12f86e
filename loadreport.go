package ek60

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/echosounder/go-ek60/decode"
)

// LoadReport summarizes one ReadRaw call: the geometric and temporal extent
// of the pings read, which files contributed them, and a content fingerprint
// per file so repeat runs can detect whether a source file changed.
type LoadReport struct {
	Files         []FileFingerprint
	ChannelIDs    []string
	StartTime     time.Time
	EndTime       time.Time
	MinLatitude   float64
	MaxLatitude   float64
	MinLongitude  float64
	MaxLongitude  float64
	PingCount     int
	Warnings      []string
}

// FileFingerprint pairs a source file's path with an xxhash64 digest of its
// contents, letting callers detect whether a previously loaded file has
// since changed on disk.
type FileFingerprint struct {
	Path   string
	Digest uint64
	Bytes  int64
}

// Fingerprint computes a FileFingerprint for path by streaming it through an
// xxhash64 digest rather than reading it fully into memory.
func Fingerprint(path string) (FileFingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileFingerprint{}, fmt.Errorf("%w: %v", ErrIo, err)
	}
	defer f.Close()

	h := xxhash.New()
	n, err := io.Copy(h, bufio.NewReader(f))
	if err != nil {
		return FileFingerprint{}, fmt.Errorf("%w: %v", ErrIo, err)
	}
	return FileFingerprint{Path: path, Digest: h.Sum64(), Bytes: n}, nil
}

// newLoadReport seeds a LoadReport with empty-extent sentinels so the first
// accumulate call always widens the bounds rather than comparing against a
// meaningless zero value.
func newLoadReport() *LoadReport {
	return &LoadReport{
		MinLatitude:  math.Inf(1),
		MaxLatitude:  math.Inf(-1),
		MinLongitude: math.Inf(1),
		MaxLongitude: math.Inf(-1),
	}
}

// accumulatePing widens the report's temporal extent and ping count for one
// decoded ping. Channel bookkeeping is the caller's responsibility (it
// already tracks the channel-id set via the ping store).
func (lr *LoadReport) accumulatePing(t decode.Instant) {
	pt := t.Time()
	if lr.PingCount == 0 || pt.Before(lr.StartTime) {
		lr.StartTime = pt
	}
	if lr.PingCount == 0 || pt.After(lr.EndTime) {
		lr.EndTime = pt
	}
	lr.PingCount++
}

// accumulatePosition widens the report's geographic extent from an
// interpolated or raw GPS fix.
func (lr *LoadReport) accumulatePosition(lat, lon float64) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return
	}
	lr.MinLatitude = math.Min(lr.MinLatitude, lat)
	lr.MaxLatitude = math.Max(lr.MaxLatitude, lat)
	lr.MinLongitude = math.Min(lr.MinLongitude, lon)
	lr.MaxLongitude = math.Max(lr.MaxLongitude, lon)
}

func (lr *LoadReport) addWarning(format string, args ...any) {
	lr.Warnings = append(lr.Warnings, fmt.Sprintf(format, args...))
}

// WriteGzipJSON writes the report (or any other JSON-able value, such as an
// exported NmeaLog) to path as gzip-compressed indented JSON.
func WriteGzipJSON(path string, v any) error {
	jsn, err := JsonIndentDumps(v)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(jsn)); err != nil {
		return fmt.Errorf("%w: %v", ErrIo, err)
	}
	return gz.Close()
}
