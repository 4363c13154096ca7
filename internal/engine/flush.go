package engine

import (
	"github.com/dshills/glkio/internal/protocol"
	"github.com/dshills/glkio/internal/windowing"
)

// flush serializes everything buffered since the last flush into one
// update line: window descriptors when the tree changed shape, content
// deltas for every dirty window, and the current input request. The
// generation number goes up by one per flush.
func (e *Engine) flush(req *protocol.InputRequest) error {
	e.gen++
	u := &protocol.Update{Type: protocol.TypeUpdate, Gen: e.gen}

	if e.windows.TakeStructural() {
		e.windows.Each(func(w *windowing.Window) bool {
			u.Windows = append(u.Windows, protocol.WindowDesc{
				ID:     w.ID,
				Kind:   w.Kind.String(),
				Rock:   w.Rock,
				Left:   w.Rect.Left,
				Top:    w.Rect.Top,
				Width:  w.Rect.Width,
				Height: w.Rect.Height,
			})
			return true
		})
	}

	e.windows.Each(func(w *windowing.Window) bool {
		switch w.Kind {
		case windowing.KindGrid:
			if !w.Grid.Dirty() {
				return true
			}
			cleared, lines := w.Grid.TakeDelta()
			content := protocol.WindowContent{ID: w.ID, Clear: cleared}
			for _, line := range lines {
				content.Lines = append(content.Lines, protocol.GridLine{
					Line:    line.Line,
					Content: toWireSpans(line.Content),
				})
			}
			u.Content = append(u.Content, content)
		case windowing.KindBuffer:
			if w.Pending.Empty() {
				return true
			}
			cleared, paras := w.Pending.Take()
			content := protocol.WindowContent{ID: w.ID, Clear: cleared}
			for _, para := range paras {
				content.Text = append(content.Text, protocol.Paragraph{Content: toWireSpans(para)})
			}
			u.Content = append(u.Content, content)
		}
		return true
	})

	if req != nil {
		u.Input = append(u.Input, *req)
	}

	if err := e.enc.WriteUpdate(u); err != nil {
		e.log.Error("flush gen %d failed: %v", e.gen, err)
		return ErrTransportClosed
	}
	e.log.Debug("flushed gen %d: %d descriptors, %d content entries", e.gen, len(u.Windows), len(u.Content))
	return nil
}

// toWireSpans converts windowing spans to their wire form.
func toWireSpans(spans []windowing.Span) []protocol.Span {
	out := make([]protocol.Span, len(spans))
	for i, s := range spans {
		out[i] = protocol.Span{Style: string(s.Style), Text: s.Text}
	}
	return out
}

// inputRequest builds the input descriptor for a window, with the
// cursor hint for grids.
func (e *Engine) inputRequest(windowID int, kind string) *protocol.InputRequest {
	req := &protocol.InputRequest{ID: windowID, Kind: kind}
	if w, ok := e.windows.Window(windowID); ok && w.Kind == windowing.KindGrid {
		x, y := w.Grid.Cursor()
		req.XPos, req.YPos = &x, &y
	}
	return req
}
