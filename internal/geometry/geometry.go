// Package geometry provides the shared coordinate types for the windowing
// subsystem. All values are in content units (character cells); converting
// pixels to cells is the concern of the host's metrics, not of this package.
package geometry

// Rect represents a window's rectangle in content units.
// Left/Top are 0-indexed offsets from the display origin.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// RectFromSize creates a rectangle from an origin and a size.
func RectFromSize(left, top, width, height int) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Empty returns true if the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.Left + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Contains returns true if the point (x, y) falls inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Metrics describes the display area the host has granted, in content units.
type Metrics struct {
	Width  int
	Height int
}

// Valid returns true if both dimensions are positive.
func (m Metrics) Valid() bool {
	return m.Width > 0 && m.Height > 0
}

// Bounds returns the full display rectangle for these metrics.
func (m Metrics) Bounds() Rect {
	return Rect{Width: m.Width, Height: m.Height}
}

// SplitFixed partitions extent so the key side receives exactly size units,
// clamped to the available extent. Returns key and remainder extents.
func SplitFixed(extent, size int) (key, rest int) {
	if size < 0 {
		size = 0
	}
	if size > extent {
		size = extent
	}
	return size, extent - size
}

// SplitProportional partitions extent so the key side receives percent of it,
// rounded to the nearest unit. Rounding is reconciled on the non-key side so
// the two extents always sum to the original. Computed against the current
// extent, so repeated application is idempotent.
func SplitProportional(extent, percent int) (key, rest int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	key = (extent*percent + 50) / 100
	if key > extent {
		key = extent
	}
	return key, extent - key
}
