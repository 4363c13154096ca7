// Package term holds the host-side model of a windowed display: it
// accumulates protocol updates into per-window content and renders the
// result as a cell matrix for a terminal backend to paint.
package term

import (
	"sort"

	"github.com/dshills/glkio/internal/protocol"
)

// Cell is one rendered character cell.
type Cell struct {
	Rune  rune
	Style string
}

// Cursor is where the terminal cursor should sit, in screen cells.
type Cursor struct {
	X, Y    int
	Visible bool
}

// View accumulates updates from one interpreter connection.
//
// Window descriptors arrive as a full set after structural changes;
// content arrives as deltas. The view keeps the last descriptor set and
// replays deltas into per-window stores.
type View struct {
	gen     int
	windows map[int]protocol.WindowDesc
	grids   map[int][][]protocol.Span
	buffers map[int][]protocol.Paragraph
	input   []protocol.InputRequest
}

// NewView creates an empty view.
func NewView() *View {
	return &View{
		windows: make(map[int]protocol.WindowDesc),
		grids:   make(map[int][][]protocol.Span),
		buffers: make(map[int][]protocol.Paragraph),
	}
}

// Gen returns the generation of the last applied update.
func (v *View) Gen() int { return v.gen }

// Input returns the pending input requests from the last update.
func (v *View) Input() []protocol.InputRequest { return v.input }

// Window returns the descriptor for id, if present.
func (v *View) Window(id int) (protocol.WindowDesc, bool) {
	d, ok := v.windows[id]
	return d, ok
}

// Apply folds one update into the view.
func (v *View) Apply(u *protocol.Update) {
	v.gen = u.Gen

	if len(u.Windows) > 0 {
		// A descriptor list is the complete current tree. Drop state
		// for windows that no longer exist.
		next := make(map[int]protocol.WindowDesc, len(u.Windows))
		for _, d := range u.Windows {
			next[d.ID] = d
		}
		for id := range v.windows {
			if _, ok := next[id]; !ok {
				delete(v.grids, id)
				delete(v.buffers, id)
			}
		}
		v.windows = next
	}

	for _, c := range u.Content {
		d, ok := v.windows[c.ID]
		if !ok {
			continue
		}
		if c.Clear {
			delete(v.grids, c.ID)
			delete(v.buffers, c.ID)
		}
		switch d.Kind {
		case "grid":
			rows := v.grids[c.ID]
			for _, line := range c.Lines {
				for len(rows) <= line.Line {
					rows = append(rows, nil)
				}
				rows[line.Line] = line.Content
			}
			v.grids[c.ID] = rows
		case "buffer":
			v.buffers[c.ID] = append(v.buffers[c.ID], c.Text...)
		}
	}

	v.input = u.Input
}

// Render paints the view into a width x height cell matrix. Cells not
// covered by any window keep the zero value (rune 0, empty style).
func (v *View) Render(width, height int) [][]Cell {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}

	ids := make([]int, 0, len(v.windows))
	for id := range v.windows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		d := v.windows[id]
		switch d.Kind {
		case "grid":
			v.renderGrid(cells, d)
		case "buffer":
			v.renderBuffer(cells, d)
		}
	}
	return cells
}

func (v *View) renderGrid(cells [][]Cell, d protocol.WindowDesc) {
	for y, row := range v.grids[d.ID] {
		if y >= d.Height {
			break
		}
		x := 0
		for _, span := range row {
			for _, r := range span.Text {
				if x >= d.Width {
					break
				}
				put(cells, d.Left+x, d.Top+y, Cell{Rune: r, Style: span.Style})
				x++
			}
		}
	}
}

// renderBuffer lays paragraphs out wrapped to the window width and shows
// the tail that fits, scrolling older text off the top.
func (v *View) renderBuffer(cells [][]Cell, d protocol.WindowDesc) {
	if d.Width <= 0 || d.Height <= 0 {
		return
	}
	lines := wrapParagraphs(v.buffers[d.ID], d.Width)
	start := 0
	if len(lines) > d.Height {
		start = len(lines) - d.Height
	}
	for y, line := range lines[start:] {
		for x, c := range line {
			put(cells, d.Left+x, d.Top+y, c)
		}
	}
}

// Echo appends a locally produced paragraph to buffer window id. Hosts
// use it to keep completed line input visible, since the interpreter
// does not send input text back.
func (v *View) Echo(id int, text, style string) {
	d, ok := v.windows[id]
	if !ok || d.Kind != "buffer" {
		return
	}
	v.buffers[id] = append(v.buffers[id], protocol.Paragraph{
		Content: []protocol.Span{{Style: style, Text: text}},
	})
}

// BufferEnd returns the screen position just past the last rendered
// character of buffer window id. Hosts place the line-input prompt
// there.
func (v *View) BufferEnd(id int) (x, y int, ok bool) {
	d, found := v.windows[id]
	if !found || d.Kind != "buffer" || d.Width <= 0 || d.Height <= 0 {
		return 0, 0, false
	}
	lines := wrapParagraphs(v.buffers[id], d.Width)
	if len(lines) == 0 {
		return d.Left, d.Top, true
	}
	start := 0
	if len(lines) > d.Height {
		start = len(lines) - d.Height
	}
	last := lines[len(lines)-1]
	y = d.Top + (len(lines) - 1 - start)
	x = d.Left + len(last)
	if x >= d.Left+d.Width {
		x = d.Left
		if y < d.Top+d.Height-1 {
			y++
		}
	}
	return x, y, true
}

// wrapParagraphs flattens paragraphs into display lines of at most
// width cells, breaking inside words when a word exceeds the width.
func wrapParagraphs(paragraphs []protocol.Paragraph, width int) [][]Cell {
	var lines [][]Cell
	for _, p := range paragraphs {
		var line []Cell
		for _, span := range p.Content {
			for _, r := range span.Text {
				if len(line) == width {
					lines = append(lines, line)
					line = nil
				}
				line = append(line, Cell{Rune: r, Style: span.Style})
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func put(cells [][]Cell, x, y int, c Cell) {
	if y < 0 || y >= len(cells) {
		return
	}
	if x < 0 || x >= len(cells[y]) {
		return
	}
	cells[y][x] = c
}
