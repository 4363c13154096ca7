package stream

import (
	"io"
	"unicode/utf8"
)

// WindowSink receives the display text written to window streams. The
// windowing manager implements it; the indirection keeps this package
// free of a windowing dependency.
type WindowSink interface {
	WriteToWindow(windowID int, text string)
}

// Table owns every open stream, keyed by process-unique id. Like the
// window arena it is single-threaded by contract.
type Table struct {
	streams map[int]*Stream
	order   []int
	nextID  int
	sink    WindowSink
}

// NewTable creates an empty stream table writing window output to sink.
func NewTable(sink WindowSink) *Table {
	return &Table{
		streams: make(map[int]*Stream),
		nextID:  1,
		sink:    sink,
	}
}

// Len returns the number of open streams.
func (t *Table) Len() int {
	return len(t.order)
}

// Get returns the stream with the given id.
func (t *Table) Get(id int) (*Stream, bool) {
	s, ok := t.streams[id]
	return s, ok
}

// Each calls fn for every open stream in creation order until fn
// returns false.
func (t *Table) Each(fn func(*Stream) bool) {
	for _, id := range t.order {
		if s, ok := t.streams[id]; ok {
			if !fn(s) {
				return
			}
		}
	}
}

func (t *Table) add(s *Stream) *Stream {
	s.ID = t.nextID
	t.nextID++
	t.streams[s.ID] = s
	t.order = append(t.order, s.ID)
	return s
}

// OpenWindow allocates the output stream bound 1:1 to a window.
func (t *Table) OpenWindow(windowID int) *Stream {
	return t.add(&Stream{Kind: KindWindow, WindowID: windowID})
}

// OpenMemory allocates a memory stream seeded with the given contents
// (nil for an empty buffer). The buffer grows as needed on write.
func (t *Table) OpenMemory(contents []byte, rock int) *Stream {
	mem := make([]byte, len(contents))
	copy(mem, contents)
	return t.add(&Stream{Kind: KindMemory, Rock: rock, mem: mem})
}

// OpenFile wraps a host-supplied byte store in a stream. Storage policy
// belongs to the host; this package only needs seek/read/write.
func (t *Table) OpenFile(f io.ReadWriteSeeker, rock int) *Stream {
	return t.add(&Stream{Kind: KindFile, Rock: rock, file: f})
}

// Write appends text to the stream's target and bumps the write count
// by the number of characters. Window streams fan out to their echo
// stream, one level only.
func (t *Table) Write(id int, text string) (int, error) {
	s, ok := t.streams[id]
	if !ok {
		return 0, ErrStreamNotFound
	}
	n := utf8.RuneCountInString(text)
	if err := t.writeTarget(s, text); err != nil {
		return 0, err
	}
	s.writeCount += n
	if s.Kind == KindWindow && s.echoID != 0 {
		if echo, ok := t.streams[s.echoID]; ok {
			if err := t.writeTarget(echo, text); err == nil {
				echo.writeCount += n
			}
		}
	}
	return n, nil
}

// writeTarget writes text to a single stream's backing target, without
// echo fan-out.
func (t *Table) writeTarget(s *Stream, text string) error {
	switch s.Kind {
	case KindWindow:
		t.sink.WriteToWindow(s.WindowID, text)
	case KindMemory:
		b := []byte(text)
		if end := s.pos + len(b); end > len(s.mem) {
			s.mem = append(s.mem, make([]byte, end-len(s.mem))...)
		}
		copy(s.mem[s.pos:], b)
		s.pos += len(b)
	case KindFile:
		if _, err := s.file.Write([]byte(text)); err != nil {
			return err
		}
	}
	return nil
}

// Read reads up to maxLen bytes from a memory or file stream, advancing
// the position cursor and bumping the read count.
func (t *Table) Read(id, maxLen int) ([]byte, error) {
	s, ok := t.streams[id]
	if !ok {
		return nil, ErrStreamNotFound
	}
	if maxLen <= 0 {
		return nil, nil
	}
	switch s.Kind {
	case KindMemory:
		if s.pos >= len(s.mem) {
			return nil, io.EOF
		}
		end := min(s.pos+maxLen, len(s.mem))
		out := make([]byte, end-s.pos)
		copy(out, s.mem[s.pos:end])
		s.pos = end
		s.readCount += utf8.RuneCount(out)
		return out, nil
	case KindFile:
		buf := make([]byte, maxLen)
		n, err := s.file.Read(buf)
		if n > 0 {
			s.readCount += utf8.RuneCount(buf[:n])
			return buf[:n], nil
		}
		return nil, err
	default:
		return nil, ErrNotReadable
	}
}

// CreditRead adds characters consumed on the stream's behalf outside
// the table, such as line input delivered to the owning window.
func (t *Table) CreditRead(id, chars int) {
	if s, ok := t.streams[id]; ok {
		s.readCount += chars
	}
}

// Seek repositions a memory or file stream's cursor.
func (t *Table) Seek(id int, offset int64, whence int) (int64, error) {
	s, ok := t.streams[id]
	if !ok {
		return 0, ErrStreamNotFound
	}
	switch s.Kind {
	case KindMemory:
		var base int64
		switch whence {
		case io.SeekCurrent:
			base = int64(s.pos)
		case io.SeekEnd:
			base = int64(len(s.mem))
		}
		pos := base + offset
		if pos < 0 {
			pos = 0
		}
		if pos > int64(len(s.mem)) {
			pos = int64(len(s.mem))
		}
		s.pos = int(pos)
		return pos, nil
	case KindFile:
		return s.file.Seek(offset, whence)
	default:
		return 0, ErrNotSeekable
	}
}

// Tell returns the current position cursor of a seekable stream.
func (t *Table) Tell(id int) (int64, error) {
	s, ok := t.streams[id]
	if !ok {
		return 0, ErrStreamNotFound
	}
	switch s.Kind {
	case KindMemory:
		return int64(s.pos), nil
	case KindFile:
		return s.file.Seek(0, io.SeekCurrent)
	default:
		return 0, ErrNotSeekable
	}
}

// SetEcho attaches an echo stream to a window stream. Echo 0 detaches.
func (t *Table) SetEcho(id, echoID int) error {
	s, ok := t.streams[id]
	if !ok {
		return ErrStreamNotFound
	}
	if s.Kind != KindWindow {
		return ErrNotWindowStream
	}
	if echoID != 0 {
		if _, ok := t.streams[echoID]; !ok {
			return ErrStreamNotFound
		}
	}
	s.echoID = echoID
	return nil
}

// Contents returns a copy of a memory stream's buffer.
func (t *Table) Contents(id int) ([]byte, bool) {
	s, ok := t.streams[id]
	if !ok || s.Kind != KindMemory {
		return nil, false
	}
	out := make([]byte, len(s.mem))
	copy(out, s.mem)
	return out, true
}

// Close removes a stream and returns its final counters. Any window
// stream still echoing into it has the echo reference nulled rather
// than erroring.
func (t *Table) Close(id int) (Counters, error) {
	s, ok := t.streams[id]
	if !ok {
		return Counters{}, ErrStreamNotFound
	}
	delete(t.streams, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	for _, other := range t.streams {
		if other.echoID == id {
			other.echoID = 0
		}
	}
	return s.Counters(), nil
}
