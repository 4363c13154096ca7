package windowing

import (
	"github.com/dshills/glkio/internal/geometry"
)

// Manager owns the window tree. Every window lives in an id-keyed arena;
// ids are process-unique and never reused. The Manager is not safe for
// concurrent use: the engine is single-threaded by contract.
type Manager struct {
	windows map[int]*Window
	order   []int // ids in creation order, tombstoned entries removed
	root    int
	nextID  int

	metrics geometry.Metrics

	// structural is set by any change that alters window descriptors
	// (open, split, close, arrangement, metrics) and consumed by the
	// protocol engine at flush time.
	structural bool
}

// NewManager creates an empty window tree.
func NewManager() *Manager {
	return &Manager{
		windows: make(map[int]*Window),
		nextID:  1,
	}
}

// SetMetrics installs new display metrics and recomputes the layout.
func (m *Manager) SetMetrics(metrics geometry.Metrics) {
	m.metrics = metrics
	m.structural = true
	m.layout()
}

// Metrics returns the current display metrics.
func (m *Manager) Metrics() geometry.Metrics {
	return m.metrics
}

// Root returns the root window id, or 0 if the tree is empty.
func (m *Manager) Root() int {
	return m.root
}

// Len returns the number of live windows.
func (m *Manager) Len() int {
	return len(m.order)
}

// Window returns the window with the given id.
func (m *Manager) Window(id int) (*Window, bool) {
	w, ok := m.windows[id]
	return w, ok
}

// Each calls fn for every live window in creation order until fn
// returns false.
func (m *Manager) Each(fn func(*Window) bool) {
	for _, id := range m.order {
		if w, ok := m.windows[id]; ok {
			if !fn(w) {
				return
			}
		}
	}
}

// MarkStructural forces descriptor emission on the next flush even
// though the tree did not change, for hosts that lost their display.
func (m *Manager) MarkStructural() {
	m.structural = true
}

// TakeStructural reports whether window descriptors changed since the
// last call, and resets the flag.
func (m *Manager) TakeStructural() bool {
	s := m.structural
	m.structural = false
	return s
}

// newWindow allocates a leaf or pair node and registers it in the arena.
// Grid allocation happens before registration so a failure leaves no
// partially linked node behind.
func (m *Manager) newWindow(kind Kind, rock int) (*Window, error) {
	w := &Window{
		ID:    m.nextID,
		Kind:  kind,
		Rock:  rock,
		Style: StyleNormal,
	}
	switch kind {
	case KindGrid:
		g, err := NewGrid(0, 0)
		if err != nil {
			return nil, err
		}
		w.Grid = g
	case KindBuffer:
		w.Pending = NewPendingText()
	}
	m.nextID++
	m.windows[w.ID] = w
	m.order = append(m.order, w.ID)
	return w, nil
}

// OpenRoot creates the first window. It fails if a root already exists
// or no display metrics have been provided.
func (m *Manager) OpenRoot(kind Kind, rock int) (*Window, error) {
	if m.root != 0 {
		return nil, ErrRootExists
	}
	if !m.metrics.Valid() {
		return nil, ErrNoMetrics
	}
	w, err := m.newWindow(kind, rock)
	if err != nil {
		return nil, err
	}
	m.root = w.ID
	m.structural = true
	m.layout()
	return w, nil
}

// Split replaces an existing window with a new pair whose children are
// the existing window and a fresh leaf of the given kind. The new leaf
// is the pair's key window and sits on the side named by axis; Left and
// Above make it the first child. The whole tree is re-laid-out, since
// proportional siblings elsewhere can change size.
func (m *Manager) Split(id int, axis Axis, div Division, size int, kind Kind, rock int) (*Window, error) {
	orig, ok := m.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	if kind == KindGrid && div == DivFixed {
		// A fixed-size grid split states its extent up front; reject
		// impossible grids before touching the tree.
		if (axis.Horizontal() && size > MaxGridCols) || (!axis.Horizontal() && size > MaxGridRows) {
			return nil, ErrGridTooLarge
		}
	}

	leaf, err := m.newWindow(kind, rock)
	if err != nil {
		return nil, err
	}
	pair, err := m.newWindow(KindPair, 0)
	if err != nil {
		// Unregister the leaf; nothing links to it yet.
		m.remove(leaf.ID)
		return nil, err
	}

	pair.Axis = axis
	pair.Div = div
	pair.Size = size
	pair.Key = leaf.ID
	if axis.Leading() {
		pair.Child1, pair.Child2 = leaf.ID, orig.ID
	} else {
		pair.Child1, pair.Child2 = orig.ID, leaf.ID
	}

	// Splice the pair into the tree where orig was.
	pair.Parent = orig.Parent
	if parent, ok := m.windows[orig.Parent]; ok {
		if parent.Child1 == orig.ID {
			parent.Child1 = pair.ID
		} else if parent.Child2 == orig.ID {
			parent.Child2 = pair.ID
		}
	} else {
		m.root = pair.ID
	}
	orig.Parent = pair.ID
	leaf.Parent = pair.ID

	m.structural = true
	m.layout()
	return leaf, nil
}

// Close destroys a window and its whole subtree, detaching it from the
// parent. The former sibling is not re-parented and the parent pair is
// not collapsed; the layout pass hands the freed space to the survivor.
// Returns the closed windows so the caller can tear down their streams.
func (m *Manager) Close(id int) ([]*Window, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}

	var closed []*Window
	m.collect(id, &closed)

	if parent, ok := m.windows[w.Parent]; ok {
		if parent.Child1 == id {
			parent.Child1 = 0
		} else if parent.Child2 == id {
			parent.Child2 = 0
		}
	}
	for _, c := range closed {
		m.remove(c.ID)
		// Null any key reference into the closed subtree.
		for _, other := range m.windows {
			if other.Key == c.ID {
				other.Key = 0
			}
		}
	}
	if id == m.root {
		m.root = 0
	}

	m.structural = true
	m.layout()
	return closed, nil
}

// collect appends the subtree rooted at id to out, depth-first.
func (m *Manager) collect(id int, out *[]*Window) {
	w, ok := m.windows[id]
	if !ok {
		return
	}
	*out = append(*out, w)
	if w.Kind == KindPair {
		m.collect(w.Child1, out)
		m.collect(w.Child2, out)
	}
}

// remove tombstones a window in the arena.
func (m *Manager) remove(id int) {
	delete(m.windows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// SetArrangement mutates a pair window's split parameters. Passing key 0
// leaves the key window unchanged; a key that is not one of the pair's
// children is ignored.
func (m *Manager) SetArrangement(id int, axis Axis, div Division, size, key int) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	if w.Kind != KindPair {
		return ErrNotPair
	}
	w.Axis = axis
	w.Div = div
	w.Size = size
	if key != 0 && (key == w.Child1 || key == w.Child2) {
		w.Key = key
	}
	m.structural = true
	m.layout()
	return nil
}

// Arrangement returns a pair window's split parameters.
func (m *Manager) Arrangement(id int) (axis Axis, div Division, size, key int, err error) {
	w, ok := m.windows[id]
	if !ok {
		return 0, 0, 0, 0, ErrWindowNotFound
	}
	if w.Kind != KindPair {
		return 0, 0, 0, 0, ErrNotPair
	}
	return w.Axis, w.Div, w.Size, w.Key, nil
}

// Parent returns the id of a window's parent pair, or 0.
func (m *Manager) Parent(id int) int {
	if w, ok := m.windows[id]; ok {
		return w.Parent
	}
	return 0
}

// Sibling returns the id of the other child of a window's parent, or 0.
func (m *Manager) Sibling(id int) int {
	w, ok := m.windows[id]
	if !ok {
		return 0
	}
	parent, ok := m.windows[w.Parent]
	if !ok {
		return 0
	}
	if parent.Child1 == id {
		return parent.Child2
	}
	return parent.Child1
}

// Size returns a window's current extent in content units.
func (m *Manager) Size(id int) (width, height int, err error) {
	w, ok := m.windows[id]
	if !ok {
		return 0, 0, ErrWindowNotFound
	}
	return w.Rect.Width, w.Rect.Height, nil
}

// Write appends text to a window in its current style. Grid windows
// place it at the cursor; buffer windows accumulate it for the next
// flush; other kinds discard it.
func (m *Manager) Write(id int, text string) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	switch w.Kind {
	case KindGrid:
		w.Grid.Write(text, w.Style)
	case KindBuffer:
		w.Pending.Append(text, w.Style)
	}
	return nil
}

// SetStyle changes the style applied to subsequent writes.
func (m *Manager) SetStyle(id int, style Style) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	w.Style = style
	return nil
}

// Clear erases a window. Grids blank every cell and home the cursor;
// buffers signal a clear on the next flush; other kinds ignore it.
func (m *Manager) Clear(id int) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	switch w.Kind {
	case KindGrid:
		w.Grid.Clear()
	case KindBuffer:
		w.Pending.Clear()
	}
	return nil
}

// MoveCursor positions a grid window's cursor, clamping to bounds.
func (m *Manager) MoveCursor(id, x, y int) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	if w.Kind != KindGrid {
		return ErrNotGrid
	}
	w.Grid.MoveCursor(x, y)
	return nil
}
