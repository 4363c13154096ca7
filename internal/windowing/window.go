// Package windowing implements the window tree manager: a strictly binary
// tree of display windows held in an id-keyed arena, with the pure layout
// pass that assigns every window its rectangle in content units.
package windowing

import (
	"github.com/dshills/glkio/internal/geometry"
)

// Kind identifies what a window displays.
type Kind uint8

const (
	// KindBuffer is a scrolling text window (no retained character grid).
	KindBuffer Kind = iota

	// KindGrid is a fixed character grid with a cursor.
	KindGrid

	// KindGraphics is a window that only reports its geometry.
	KindGraphics

	// KindPair is a structural split node; it never displays content.
	KindPair
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindGrid:
		return "grid"
	case KindGraphics:
		return "graphics"
	case KindPair:
		return "pair"
	default:
		return "unknown"
	}
}

// Axis describes on which side of a split the key window lies.
type Axis uint8

const (
	// AxisLeft places the key window on the left.
	AxisLeft Axis = iota

	// AxisRight places the key window on the right.
	AxisRight

	// AxisAbove places the key window on top.
	AxisAbove

	// AxisBelow places the key window on the bottom.
	AxisBelow
)

// String returns the string representation of the axis.
func (a Axis) String() string {
	switch a {
	case AxisLeft:
		return "left"
	case AxisRight:
		return "right"
	case AxisAbove:
		return "above"
	case AxisBelow:
		return "below"
	default:
		return "unknown"
	}
}

// Horizontal returns true if the split partitions the width.
func (a Axis) Horizontal() bool {
	return a == AxisLeft || a == AxisRight
}

// Leading returns true if the key window occupies the leading side
// (left or top), which also makes it the first child of the pair.
func (a Axis) Leading() bool {
	return a == AxisLeft || a == AxisAbove
}

// Division is the split sizing policy of a pair window.
type Division uint8

const (
	// DivFixed gives the key window a fixed number of content units.
	DivFixed Division = iota

	// DivProportional gives the key window a percentage of the extent.
	DivProportional
)

// String returns the string representation of the division policy.
func (d Division) String() string {
	switch d {
	case DivFixed:
		return "fixed"
	case DivProportional:
		return "proportional"
	default:
		return "unknown"
	}
}

// Style is a text style tag carried on every span.
type Style string

// Styles understood by hosts. The zero value renders as normal.
const (
	StyleNormal       Style = "normal"
	StyleEmphasized   Style = "emphasized"
	StylePreformatted Style = "preformatted"
	StyleHeader       Style = "header"
	StyleSubheader    Style = "subheader"
	StyleInput        Style = "input"
)

// Span is a run of text in a single style.
type Span struct {
	Style Style
	Text  string
}

// Window is a node in the window tree. Tree links are window ids, never
// pointers; the Manager's arena is the sole owner and id 0 means "none".
type Window struct {
	ID   int
	Kind Kind
	Rock int

	// Tree links.
	Parent int
	Child1 int
	Child2 int

	// Split metadata, pair windows only.
	Axis Axis
	Div  Division
	Size int
	Key  int

	// Computed by the layout pass.
	Rect geometry.Rect

	// Kind-specific payload.
	Grid    *Grid        // KindGrid only
	Pending *PendingText // KindBuffer only

	// Current output style for text written to this window.
	Style Style

	// Stream bookkeeping, maintained by the engine.
	StreamID int
}

// Leaf returns true for windows that can display content.
func (w *Window) Leaf() bool {
	return w.Kind != KindPair
}
