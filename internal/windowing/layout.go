package windowing

import (
	"github.com/dshills/glkio/internal/geometry"
)

// layout recomputes every window's rectangle from the root down. It is
// deterministic and idempotent: running it twice without an intervening
// structural change yields identical rectangles.
func (m *Manager) layout() {
	if m.root == 0 || !m.metrics.Valid() {
		return
	}
	m.place(m.root, m.metrics.Bounds())
}

// place assigns rect to the window and, for pairs, partitions it between
// the children along the split axis.
func (m *Manager) place(id int, rect geometry.Rect) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	w.Rect = rect
	if w.Kind == KindGrid {
		w.Grid.Resize(rect.Width, rect.Height)
	}
	if w.Kind != KindPair {
		return
	}

	// A pair missing a child (after a leaf close, before the pair itself
	// is closed) hands the whole rectangle to the survivor.
	if w.Child1 == 0 && w.Child2 == 0 {
		return
	}
	if w.Child1 == 0 {
		m.place(w.Child2, rect)
		return
	}
	if w.Child2 == 0 {
		m.place(w.Child1, rect)
		return
	}

	key := w.Key
	if key != w.Child1 && key != w.Child2 {
		// Key was closed or never set; fall back to the child on the
		// axis side, which is where the key would have been.
		if w.Axis.Leading() {
			key = w.Child1
		} else {
			key = w.Child2
		}
	}
	other := w.Child1
	if other == key {
		other = w.Child2
	}

	extent := rect.Height
	if w.Axis.Horizontal() {
		extent = rect.Width
	}
	var keyExt, restExt int
	switch w.Div {
	case DivProportional:
		keyExt, restExt = geometry.SplitProportional(extent, w.Size)
	default:
		keyExt, restExt = geometry.SplitFixed(extent, w.Size)
	}

	keyRect, otherRect := partition(rect, w.Axis, keyExt, restExt)
	m.place(key, keyRect)
	m.place(other, otherRect)
}

// partition carves rect into the key window's portion on the axis side
// and the remainder. The non-split-axis extent is inherited in full.
func partition(rect geometry.Rect, axis Axis, keyExt, restExt int) (key, rest geometry.Rect) {
	switch axis {
	case AxisLeft:
		key = geometry.RectFromSize(rect.Left, rect.Top, keyExt, rect.Height)
		rest = geometry.RectFromSize(rect.Left+keyExt, rect.Top, restExt, rect.Height)
	case AxisRight:
		rest = geometry.RectFromSize(rect.Left, rect.Top, restExt, rect.Height)
		key = geometry.RectFromSize(rect.Left+restExt, rect.Top, keyExt, rect.Height)
	case AxisAbove:
		key = geometry.RectFromSize(rect.Left, rect.Top, rect.Width, keyExt)
		rest = geometry.RectFromSize(rect.Left, rect.Top+keyExt, rect.Width, restExt)
	case AxisBelow:
		rest = geometry.RectFromSize(rect.Left, rect.Top, rect.Width, restExt)
		key = geometry.RectFromSize(rect.Left, rect.Top+restExt, rect.Width, keyExt)
	}
	return key, rest
}
