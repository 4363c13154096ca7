package windowing

// Grid size caps. A layout pass can never grow a grid beyond these; a
// request that would is a resource-exhaustion failure, not a crash.
const (
	MaxGridRows = 512
	MaxGridCols = 1024
)

// cell is one character cell of a grid window.
type cell struct {
	r     rune
	style Style
}

// emptyCell returns a blank cell in the normal style.
func emptyCell() cell {
	return cell{r: ' ', style: StyleNormal}
}

// Grid is the retained character grid of a KindGrid window: a bounded
// rows x cols cell matrix, a parallel per-row dirty flag array, and a
// cursor clamped to the grid bounds.
type Grid struct {
	width  int
	height int
	cells  [][]cell
	dirty  []bool

	cursorX int
	cursorY int

	// cleared is set by Clear and consumed by TakeDelta.
	cleared bool
}

// NewGrid creates a grid with the given dimensions. Dimensions above the
// caps are an error; negative dimensions are treated as zero.
func NewGrid(width, height int) (*Grid, error) {
	if width > MaxGridCols || height > MaxGridRows {
		return nil, ErrGridTooLarge
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{width: width, height: height}
	g.allocate()
	return g, nil
}

// allocate creates the cell matrix and dirty flags.
func (g *Grid) allocate() {
	g.cells = make([][]cell, g.height)
	g.dirty = make([]bool, g.height)
	for y := 0; y < g.height; y++ {
		g.cells[y] = make([]cell, g.width)
		for x := 0; x < g.width; x++ {
			g.cells[y][x] = emptyCell()
		}
	}
}

// Size returns the grid dimensions.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// Cursor returns the current cursor position.
func (g *Grid) Cursor() (x, y int) {
	return g.cursorX, g.cursorY
}

// Resize reconciles the grid against a new cell count, preserving content
// where possible. Dimensions are clamped to the caps. Surviving rows are
// marked dirty because the host must repaint reflowed content; rows that
// are new stay blank and need no transmission.
func (g *Grid) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width > MaxGridCols {
		width = MaxGridCols
	}
	if height > MaxGridRows {
		height = MaxGridRows
	}
	if width == g.width && height == g.height {
		return
	}

	old := g.cells
	oldWidth, oldHeight := g.width, g.height
	g.width, g.height = width, height
	g.allocate()

	copyHeight := min(oldHeight, height)
	copyWidth := min(oldWidth, width)
	for y := 0; y < copyHeight; y++ {
		copy(g.cells[y][:copyWidth], old[y][:copyWidth])
		g.dirty[y] = true
	}
	g.clampCursor()
}

// MoveCursor moves the cursor, clamping out-of-range coordinates to the
// last valid column/row rather than erroring.
func (g *Grid) MoveCursor(x, y int) {
	g.cursorX = x
	g.cursorY = y
	g.clampCursor()
}

func (g *Grid) clampCursor() {
	if g.cursorX < 0 {
		g.cursorX = 0
	}
	if g.cursorY < 0 {
		g.cursorY = 0
	}
	if g.width > 0 && g.cursorX >= g.width {
		g.cursorX = g.width - 1
	}
	if g.height > 0 && g.cursorY >= g.height {
		g.cursorY = g.height - 1
	}
}

// Write places text at the cursor in the given style, advancing the cursor.
// Lines wrap at the right edge; a newline moves to the start of the next
// row; text past the bottom row is discarded.
func (g *Grid) Write(text string, style Style) {
	if g.width == 0 || g.height == 0 {
		return
	}
	for _, r := range text {
		if r == '\n' {
			g.cursorX = 0
			g.cursorY++
			continue
		}
		if g.cursorX >= g.width {
			g.cursorX = 0
			g.cursorY++
		}
		if g.cursorY >= g.height {
			return
		}
		g.cells[g.cursorY][g.cursorX] = cell{r: r, style: style}
		g.dirty[g.cursorY] = true
		g.cursorX++
	}
}

// Clear resets every cell to a space, clears the dirty flags, and homes
// the cursor. The pending clear is reported by the next TakeDelta.
func (g *Grid) Clear() {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			g.cells[y][x] = emptyCell()
		}
		g.dirty[y] = false
	}
	g.cursorX, g.cursorY = 0, 0
	g.cleared = true
}

// MarkDirty flags a row for inclusion in the next TakeDelta.
func (g *Grid) MarkDirty(y int) {
	if y >= 0 && y < g.height {
		g.dirty[y] = true
	}
}

// Dirty returns true if any row changed since the last TakeDelta.
func (g *Grid) Dirty() bool {
	if g.cleared {
		return true
	}
	for _, d := range g.dirty {
		if d {
			return true
		}
	}
	return false
}

// LineDelta is one changed grid row with its full final content.
type LineDelta struct {
	Line    int
	Content []Span
}

// TakeDelta returns the pending clear flag and every dirty row's final
// content, then resets the dirty state. Runs of adjacent cells in the
// same style merge into one span.
func (g *Grid) TakeDelta() (cleared bool, lines []LineDelta) {
	cleared = g.cleared
	g.cleared = false
	for y := 0; y < g.height; y++ {
		if !g.dirty[y] {
			continue
		}
		g.dirty[y] = false
		lines = append(lines, LineDelta{Line: y, Content: g.rowSpans(y)})
	}
	return cleared, lines
}

// rowSpans renders row y as style-merged spans.
func (g *Grid) rowSpans(y int) []Span {
	if g.width == 0 {
		return nil
	}
	var spans []Span
	run := make([]rune, 0, g.width)
	style := g.cells[y][0].style
	for x := 0; x < g.width; x++ {
		c := g.cells[y][x]
		if c.style != style {
			spans = append(spans, Span{Style: style, Text: string(run)})
			run = run[:0]
			style = c.style
		}
		run = append(run, c.r)
	}
	spans = append(spans, Span{Style: style, Text: string(run)})
	return spans
}

// Line returns row y as a plain string, for tests and host-side rendering.
func (g *Grid) Line(y int) string {
	if y < 0 || y >= g.height {
		return ""
	}
	rs := make([]rune, g.width)
	for x := 0; x < g.width; x++ {
		rs[x] = g.cells[y][x].r
	}
	return string(rs)
}
