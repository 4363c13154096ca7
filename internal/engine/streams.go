package engine

import (
	"io"

	"github.com/dshills/glkio/internal/registry"
	"github.com/dshills/glkio/internal/stream"
	"github.com/dshills/glkio/internal/windowing"
)

// OpenMemoryStream creates a memory-backed stream seeded with contents
// (nil for empty). Returns the stream id.
func (e *Engine) OpenMemoryStream(contents []byte, rock int) int {
	s := e.streams.OpenMemory(contents, rock)
	e.reg.Register(registry.ClassStream, s.ID, rock)
	return s.ID
}

// OpenFileStream wraps a host-supplied byte store. The engine treats it
// as an opaque seekable stream; persistence policy stays with the host.
func (e *Engine) OpenFileStream(f io.ReadWriteSeeker, rock int) int {
	s := e.streams.OpenFile(f, rock)
	e.reg.Register(registry.ClassStream, s.ID, rock)
	return s.ID
}

// StreamWrite appends text to a stream.
func (e *Engine) StreamWrite(id int, text string) (int, error) {
	n, err := e.streams.Write(id, text)
	return n, opErr("stream write", id, err)
}

// StreamRead reads up to maxLen bytes from a memory or file stream.
func (e *Engine) StreamRead(id, maxLen int) ([]byte, error) {
	b, err := e.streams.Read(id, maxLen)
	if err == io.EOF {
		return nil, io.EOF
	}
	return b, opErr("stream read", id, err)
}

// StreamSeek repositions a seekable stream's cursor.
func (e *Engine) StreamSeek(id int, offset int64, whence int) (int64, error) {
	pos, err := e.streams.Seek(id, offset, whence)
	return pos, opErr("stream seek", id, err)
}

// StreamTell returns a seekable stream's cursor position.
func (e *Engine) StreamTell(id int) (int64, error) {
	pos, err := e.streams.Tell(id)
	return pos, opErr("stream tell", id, err)
}

// StreamContents returns a copy of a memory stream's buffer.
func (e *Engine) StreamContents(id int) ([]byte, bool) {
	return e.streams.Contents(id)
}

// CloseStream closes a stream and returns its final counters. A window
// still pointing at it as an echo target has the reference nulled.
func (e *Engine) CloseStream(id int) (stream.Counters, error) {
	c, err := e.streams.Close(id)
	if err != nil {
		return c, opErr("close stream", id, err)
	}
	e.reg.Remove(registry.ClassStream, id)
	return c, nil
}

// SetEchoStream attaches an echo stream to a window's output stream.
// Stream id 0 detaches.
func (e *Engine) SetEchoStream(windowID, streamID int) error {
	w, ok := e.windows.Window(windowID)
	if !ok {
		return opErr("set echo", windowID, windowing.ErrWindowNotFound)
	}
	return opErr("set echo", windowID, e.streams.SetEcho(w.StreamID, streamID))
}

// EchoStream returns the id of a window's echo stream, or 0.
func (e *Engine) EchoStream(windowID int) int {
	w, ok := e.windows.Window(windowID)
	if !ok {
		return 0
	}
	s, ok := e.streams.Get(w.StreamID)
	if !ok {
		return 0
	}
	return s.Echo()
}
