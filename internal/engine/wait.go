package engine

import (
	"io"
	"unicode/utf8"

	"github.com/dshills/glkio/internal/geometry"
	"github.com/dshills/glkio/internal/protocol"
	"github.com/dshills/glkio/internal/windowing"
)

// WaitLineInput flushes buffered output, announces a line input request
// for the window, and blocks until the host delivers a completed line.
func (e *Engine) WaitLineInput(windowID int) (string, error) {
	return e.wait(windowID, protocol.InputLine)
}

// WaitCharInput is WaitLineInput for a single keystroke. The returned
// value is either one character or a key name such as "return".
func (e *Engine) WaitCharInput(windowID int) (string, error) {
	return e.wait(windowID, protocol.InputChar)
}

// wait is the engine's only suspension point. It consumes events in
// arrival order until one matches the outstanding request; stale
// generations, wrong windows, and unsolicited event kinds are discarded
// with a warning, never fatally.
func (e *Engine) wait(windowID int, kind string) (string, error) {
	if e.state == StateUninitialized {
		return "", opErr("wait input", windowID, ErrNotInitialized)
	}
	if _, ok := e.windows.Window(windowID); !ok {
		return "", opErr("wait input", windowID, windowing.ErrWindowNotFound)
	}

	req := e.inputRequest(windowID, kind)
	if err := e.flush(req); err != nil {
		return "", opErr("wait input", windowID, err)
	}
	e.state = StateAwaitingInput

	malformed := 0
	for {
		ev, err := e.dec.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return "", opErr("wait input", windowID, ErrTransportClosed)
			}
			malformed++
			e.log.Warn("skipping malformed line: %v", err)
			if malformed >= maxMalformed {
				return "", opErr("wait input", windowID, ErrTransportClosed)
			}
			continue
		}
		malformed = 0

		switch ev.Type {
		case protocol.TypeArrange:
			if ev.Metrics == nil || ev.Metrics.Width <= 0 || ev.Metrics.Height <= 0 {
				e.log.Warn("arrange without usable metrics; discarding")
				continue
			}
			e.windows.SetMetrics(geometry.Metrics{Width: ev.Metrics.Width, Height: ev.Metrics.Height})
			e.log.Info("arranged to %dx%d", ev.Metrics.Width, ev.Metrics.Height)
			if err := e.flush(e.inputRequest(windowID, kind)); err != nil {
				return "", opErr("wait input", windowID, err)
			}

		case protocol.TypeRedraw, protocol.TypeRefresh:
			e.markAllDirty()
			if err := e.flush(e.inputRequest(windowID, kind)); err != nil {
				return "", opErr("wait input", windowID, err)
			}

		case protocol.TypeLine, protocol.TypeChar:
			if ev.Gen != e.gen {
				e.log.Warn("stale reply gen %d, want %d; discarding", ev.Gen, e.gen)
				continue
			}
			if ev.Type != kind {
				e.log.Warn("got %s input while waiting for %s; discarding", ev.Type, kind)
				continue
			}
			if ev.Window != windowID {
				e.log.Warn("input addressed to window %d, want %d; discarding", ev.Window, windowID)
				continue
			}
			e.state = StateRunning
			e.creditInput(windowID, kind, ev.Value)
			return ev.Value, nil

		case protocol.TypeInit:
			e.log.Warn("duplicate init; discarding")

		default:
			// Hyperlink, mouse, and anything newer: only meaningful if
			// requested, which this engine never does.
			e.log.Debug("ignoring %q event", ev.Type)
		}
	}
}

// creditInput charges delivered input to the window stream's read count.
func (e *Engine) creditInput(windowID int, kind, value string) {
	w, ok := e.windows.Window(windowID)
	if !ok {
		return
	}
	chars := 1
	if kind == protocol.InputLine {
		chars = utf8.RuneCountInString(value)
	}
	e.streams.CreditRead(w.StreamID, chars)
}

// markAllDirty forces the next flush to resend every grid row and the
// window descriptors, for hosts that lost their display.
func (e *Engine) markAllDirty() {
	e.windows.Each(func(w *windowing.Window) bool {
		if w.Kind == windowing.KindGrid {
			_, h := w.Grid.Size()
			for y := 0; y < h; y++ {
				w.Grid.MarkDirty(y)
			}
		}
		return true
	})
	e.windows.MarkStructural()
}
