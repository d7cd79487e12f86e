package decode

import "time"

// filetimeEpochDeltaTicks is the number of 100ns ticks between the Windows
// FILETIME epoch (1601-01-01 00:00:00 UTC) and the Unix epoch
// (1970-01-01 00:00:00 UTC).
const filetimeEpochDeltaTicks int64 = 116444736000000000

// filetimeTicksPerMs is the number of 100ns ticks in one millisecond.
const filetimeTicksPerMs int64 = 10_000

// Instant is the canonical in-memory timestamp: a UTC instant with
// millisecond resolution. Higher resolution is never required downstream;
// every datagram parser and transform works in Instant, not raw FILETIME.
type Instant struct {
	ms int64 // milliseconds since the Unix epoch, UTC
}

// NewInstant constructs an Instant from milliseconds since the Unix epoch.
func NewInstant(unixMs int64) Instant {
	return Instant{ms: unixMs}
}

// InstantFromTime converts a time.Time (any location) to an Instant,
// truncating to millisecond resolution.
func InstantFromTime(t time.Time) Instant {
	return Instant{ms: t.UnixMilli()}
}

// UnixMs returns the number of milliseconds since the Unix epoch.
func (i Instant) UnixMs() int64 { return i.ms }

// Time returns the UTC time.Time representation.
func (i Instant) Time() time.Time { return time.UnixMilli(i.ms).UTC() }

// Before reports whether i occurs strictly before o.
func (i Instant) Before(o Instant) bool { return i.ms < o.ms }

// After reports whether i occurs strictly after o.
func (i Instant) After(o Instant) bool { return i.ms > o.ms }

// Equal reports whether i and o are the same millisecond.
func (i Instant) Equal(o Instant) bool { return i.ms == o.ms }

// Sub returns i-o as a time.Duration at millisecond resolution.
func (i Instant) Sub(o Instant) time.Duration {
	return time.Duration(i.ms-o.ms) * time.Millisecond
}

// Add returns i shifted forward by d, truncated to the millisecond.
func (i Instant) Add(d time.Duration) Instant {
	return Instant{ms: i.ms + d.Milliseconds()}
}

// IsZero reports whether i is the zero Instant.
func (i Instant) IsZero() bool { return i.ms == 0 }

// FileTime is the on-disk (low, high) 32-bit word pair used throughout the
// Simrad datagram stream: a count of 100ns ticks since 1601-01-01 UTC,
// split across two little-endian uint32 words.
type FileTime struct {
	Low  uint32
	High uint32
}

// ToInstant converts a FileTime pair to the canonical Instant, following
// the conversion policy in spec section 4.1: combine the two words into a
// 64-bit tick count, subtract the 1601->1970 epoch delta, and divide by
// 10000 to get milliseconds.
func (f FileTime) ToInstant() Instant {
	ticks := int64(f.High)<<32 | int64(f.Low)
	ms := (ticks - filetimeEpochDeltaTicks) / filetimeTicksPerMs
	return Instant{ms: ms}
}

// FileTimeFromInstant performs the inverse conversion: milliseconds since
// the Unix epoch back to a (low, high) FILETIME word pair.
func FileTimeFromInstant(i Instant) FileTime {
	ticks := i.ms*filetimeTicksPerMs + filetimeEpochDeltaTicks
	return FileTime{
		Low:  uint32(ticks & 0xFFFFFFFF),
		High: uint32(ticks >> 32),
	}
}
