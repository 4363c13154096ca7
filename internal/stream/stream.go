// Package stream implements the stream subsystem: addressable character
// sinks/sources with read/write counters, position cursors for seekable
// kinds, and one-level echo fan-out.
package stream

import (
	"errors"
	"io"
)

// Stream errors.
var (
	// ErrStreamNotFound indicates the stream id is not in the table.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrNotSeekable indicates a seek/tell on a window stream.
	ErrNotSeekable = errors.New("stream is not seekable")

	// ErrNotReadable indicates a read on a window stream.
	ErrNotReadable = errors.New("stream is not readable")

	// ErrNotWindowStream indicates an echo operation on a stream that
	// is not bound to a window.
	ErrNotWindowStream = errors.New("stream is not a window stream")
)

// Kind identifies a stream's backing target.
type Kind uint8

const (
	// KindWindow streams feed a window's display output.
	KindWindow Kind = iota

	// KindMemory streams read and write an in-memory buffer.
	KindMemory

	// KindFile streams wrap a byte store supplied by the host.
	KindFile
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindMemory:
		return "memory"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Counters are the cumulative character counts returned when a stream
// closes, for caller bookkeeping.
type Counters struct {
	ReadCount  int
	WriteCount int
}

// Stream is one open stream. Position and buffer fields are only
// meaningful for the kinds that use them.
type Stream struct {
	ID   int
	Kind Kind
	Rock int

	// WindowID is the owning window, KindWindow only.
	WindowID int

	// echoID is the stream that receives a copy of every write to this
	// window stream. One level only: the copy never fans out again.
	echoID int

	mem  []byte
	pos  int
	file io.ReadWriteSeeker

	readCount  int
	writeCount int
}

// Counters returns the stream's current character counts.
func (s *Stream) Counters() Counters {
	return Counters{ReadCount: s.readCount, WriteCount: s.writeCount}
}

// Echo returns the id of this stream's echo stream, or 0.
func (s *Stream) Echo() int {
	return s.echoID
}
