package engine

import (
	"io"

	"github.com/dshills/glkio/internal/geometry"
	"github.com/dshills/glkio/internal/logging"
	"github.com/dshills/glkio/internal/protocol"
	"github.com/dshills/glkio/internal/registry"
	"github.com/dshills/glkio/internal/stream"
	"github.com/dshills/glkio/internal/windowing"
)

// State is the engine's position in its lifecycle.
type State uint8

const (
	// StateUninitialized means no window has been opened yet.
	StateUninitialized State = iota

	// StateAwaitingFirstWindow means the engine is consuming the host's
	// init message during the first OpenRoot.
	StateAwaitingFirstWindow

	// StateRunning means the engine is executing interpreter calls.
	StateRunning

	// StateAwaitingInput means the engine is blocked on the host.
	StateAwaitingInput
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAwaitingFirstWindow:
		return "awaiting-first-window"
	case StateRunning:
		return "running"
	case StateAwaitingInput:
		return "awaiting-input"
	default:
		return "unknown"
	}
}

// maxMalformed is how many consecutive unparseable lines the engine
// tolerates before treating the transport as broken.
const maxMalformed = 8

// windowSink routes window-stream writes into the window manager.
type windowSink struct {
	m *windowing.Manager
}

func (s windowSink) WriteToWindow(windowID int, text string) {
	// A write to a closed window is a permissive no-op.
	_ = s.m.Write(windowID, text)
}

// Engine holds all process state for one runtime instance: the window
// tree, stream table, registry, protocol buffers, and generation
// counter. Multiple independent engines can coexist, which is how the
// tests run it.
type Engine struct {
	state State
	gen   int

	windows *windowing.Manager
	streams *stream.Table
	reg     *registry.Registry

	enc *protocol.Encoder
	dec *protocol.Decoder
	log *logging.Logger

	filerefs    map[int]fileref
	nextFileref int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an engine speaking the wire protocol on in/out.
func New(in io.Reader, out io.Writer, opts ...Option) *Engine {
	wm := windowing.NewManager()
	e := &Engine{
		windows: wm,
		streams: stream.NewTable(windowSink{m: wm}),
		reg:     registry.New(),
		enc:     protocol.NewEncoder(out),
		dec:     protocol.NewDecoder(in),
		log:     logging.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Generation returns the generation number of the last flush.
func (e *Engine) Generation() int {
	return e.gen
}

// Registry exposes the live-object registry for external serialization
// tooling. Callers must not mutate through it.
func (e *Engine) Registry() *registry.Registry {
	return e.reg
}

// awaitInit consumes exactly one init message from the host. Anything
// else arriving first is discarded with a warning.
func (e *Engine) awaitInit() error {
	e.state = StateAwaitingFirstWindow
	malformed := 0
	for {
		ev, err := e.dec.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return ErrTransportClosed
			}
			malformed++
			e.log.Warn("skipping malformed line during init: %v", err)
			if malformed >= maxMalformed {
				return ErrTransportClosed
			}
			continue
		}
		malformed = 0
		if ev.Type != protocol.TypeInit {
			e.log.Warn("expected init, got %q; discarding", ev.Type)
			continue
		}
		if ev.Metrics == nil || ev.Metrics.Width <= 0 || ev.Metrics.Height <= 0 {
			return ErrBadInit
		}
		e.windows.SetMetrics(geometry.Metrics{Width: ev.Metrics.Width, Height: ev.Metrics.Height})
		e.state = StateRunning
		e.log.Info("initialized with metrics %dx%d", ev.Metrics.Width, ev.Metrics.Height)
		return nil
	}
}

// OpenRoot creates the first window. On the very first call the engine
// blocks until the host's init message arrives.
func (e *Engine) OpenRoot(kind windowing.Kind, rock int) (int, error) {
	if e.state == StateUninitialized {
		if err := e.awaitInit(); err != nil {
			return 0, opErr("open root", 0, err)
		}
	}
	w, err := e.windows.OpenRoot(kind, rock)
	if err != nil {
		return 0, opErr("open root", 0, err)
	}
	e.attachStream(w)
	return w.ID, nil
}

// Split replaces an existing window with a pair holding it and a new
// leaf of the given kind. Returns the new leaf's id.
func (e *Engine) Split(id int, axis windowing.Axis, div windowing.Division, size int, kind windowing.Kind, rock int) (int, error) {
	w, err := e.windows.Split(id, axis, div, size, kind, rock)
	if err != nil {
		return 0, opErr("split", id, err)
	}
	e.attachStream(w)
	return w.ID, nil
}

// attachStream gives a fresh window its output stream and registers
// both objects.
func (e *Engine) attachStream(w *windowing.Window) {
	s := e.streams.OpenWindow(w.ID)
	w.StreamID = s.ID
	e.reg.Register(registry.ClassWindow, w.ID, w.Rock)
	e.reg.Register(registry.ClassStream, s.ID, 0)
}

// CloseWindow destroys a window and its subtree, tearing down their
// streams. Returns the final counters of the named window's stream.
func (e *Engine) CloseWindow(id int) (stream.Counters, error) {
	closed, err := e.windows.Close(id)
	if err != nil {
		return stream.Counters{}, opErr("close window", id, err)
	}
	var counters stream.Counters
	for _, w := range closed {
		if w.StreamID != 0 {
			c, cerr := e.streams.Close(w.StreamID)
			if cerr == nil && w.ID == id {
				counters = c
			}
			e.reg.Remove(registry.ClassStream, w.StreamID)
		}
		e.reg.Remove(registry.ClassWindow, w.ID)
	}
	return counters, nil
}

// SetArrangement mutates a pair window's split parameters. Key 0 leaves
// the key window unchanged.
func (e *Engine) SetArrangement(id int, axis windowing.Axis, div windowing.Division, size, key int) error {
	if err := e.windows.SetArrangement(id, axis, div, size, key); err != nil {
		e.log.Warn("set arrangement on window %d: %v", id, err)
		return opErr("set arrangement", id, err)
	}
	return nil
}

// Arrangement returns a pair window's split parameters.
func (e *Engine) Arrangement(id int) (windowing.Axis, windowing.Division, int, int, error) {
	axis, div, size, key, err := e.windows.Arrangement(id)
	return axis, div, size, key, opErr("get arrangement", id, err)
}

// WindowSize returns a window's extent in content units. Unknown ids
// report zero size.
func (e *Engine) WindowSize(id int) (width, height int) {
	width, height, _ = e.windows.Size(id)
	return width, height
}

// Parent returns a window's parent pair id, or 0.
func (e *Engine) Parent(id int) int {
	return e.windows.Parent(id)
}

// Sibling returns the other child of a window's parent, or 0.
func (e *Engine) Sibling(id int) int {
	return e.windows.Sibling(id)
}

// EachWindow calls fn for every live window in creation order.
func (e *Engine) EachWindow(fn func(*windowing.Window) bool) {
	e.windows.Each(fn)
}

// Print writes text to a window through its output stream, so write
// counters and the echo stream see it.
func (e *Engine) Print(id int, text string) error {
	w, ok := e.windows.Window(id)
	if !ok {
		return opErr("print", id, windowing.ErrWindowNotFound)
	}
	_, err := e.streams.Write(w.StreamID, text)
	return opErr("print", id, err)
}

// SetStyle changes the style of subsequent output to a window.
func (e *Engine) SetStyle(id int, style windowing.Style) error {
	return opErr("set style", id, e.windows.SetStyle(id, style))
}

// Clear erases a window's display.
func (e *Engine) Clear(id int) error {
	return opErr("clear", id, e.windows.Clear(id))
}

// MoveCursor positions a grid window's cursor, clamping out-of-range
// coordinates.
func (e *Engine) MoveCursor(id, x, y int) error {
	if err := e.windows.MoveCursor(id, x, y); err != nil {
		e.log.Warn("move cursor on window %d: %v", id, err)
		return opErr("move cursor", id, err)
	}
	return nil
}
