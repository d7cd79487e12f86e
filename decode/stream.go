package decode

import "io"

// Stream caters for a generic seekable byte source so the framing reader can
// operate equally against an *os.File, a *bytes.Reader over an in-memory
// buffer, or any other reader/seeker a caller hands us.
type Stream interface {
	io.Reader
	io.Seeker
}

// Tell reports the current position within a Stream.
func Tell(stream Stream) (int64, error) {
	return stream.Seek(0, io.SeekCurrent)
}
