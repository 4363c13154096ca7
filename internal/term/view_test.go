package term

import (
	"testing"

	"github.com/dshills/glkio/internal/protocol"
)

func desc(id int, kind string, left, top, width, height int) protocol.WindowDesc {
	return protocol.WindowDesc{ID: id, Kind: kind, Left: left, Top: top, Width: width, Height: height}
}

func rowText(cells [][]Cell, y, x, n int) string {
	rs := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		r := cells[y][x+i].Rune
		if r == 0 {
			r = ' '
		}
		rs = append(rs, r)
	}
	return string(rs)
}

func TestViewGridLines(t *testing.T) {
	v := NewView()
	v.Apply(&protocol.Update{
		Type:    protocol.TypeUpdate,
		Gen:     1,
		Windows: []protocol.WindowDesc{desc(1, "grid", 0, 0, 10, 2)},
		Content: []protocol.WindowContent{{
			ID: 1,
			Lines: []protocol.GridLine{
				{Line: 1, Content: []protocol.Span{{Style: "normal", Text: "Score: 10"}}},
			},
		}},
	})

	cells := v.Render(10, 2)
	if got := rowText(cells, 1, 0, 9); got != "Score: 10" {
		t.Errorf("grid row 1 = %q, want %q", got, "Score: 10")
	}
	if cells[0][0].Rune != 0 {
		t.Errorf("untouched row should stay blank, got %q", cells[0][0].Rune)
	}
}

func TestViewBufferWrapAndScroll(t *testing.T) {
	v := NewView()
	u := &protocol.Update{
		Gen:     1,
		Windows: []protocol.WindowDesc{desc(1, "buffer", 0, 0, 5, 2)},
	}
	for _, text := range []string{"aaaaabb", "cc"} {
		u.Content = append(u.Content, protocol.WindowContent{
			ID:   1,
			Text: []protocol.Paragraph{{Content: []protocol.Span{{Style: "normal", Text: text}}}},
		})
	}
	v.Apply(u)

	// Three wrapped lines (aaaaa / bb / cc) in a two-row window: the
	// first scrolls off.
	cells := v.Render(5, 2)
	if got := rowText(cells, 0, 0, 5); got != "bb   " {
		t.Errorf("row 0 = %q, want %q", got, "bb   ")
	}
	if got := rowText(cells, 1, 0, 5); got != "cc   " {
		t.Errorf("row 1 = %q, want %q", got, "cc   ")
	}

	x, y, ok := v.BufferEnd(1)
	if !ok {
		t.Fatal("BufferEnd should resolve for a buffer window")
	}
	if x != 2 || y != 1 {
		t.Errorf("buffer end = (%d,%d), want (2,1)", x, y)
	}
}

func TestViewClearResetsWindow(t *testing.T) {
	v := NewView()
	v.Apply(&protocol.Update{
		Gen:     1,
		Windows: []protocol.WindowDesc{desc(1, "buffer", 0, 0, 10, 3)},
		Content: []protocol.WindowContent{{
			ID:   1,
			Text: []protocol.Paragraph{{Content: []protocol.Span{{Text: "old"}}}},
		}},
	})
	v.Apply(&protocol.Update{
		Gen: 2,
		Content: []protocol.WindowContent{{
			ID:    1,
			Clear: true,
			Text:  []protocol.Paragraph{{Content: []protocol.Span{{Text: "new"}}}},
		}},
	})

	cells := v.Render(10, 3)
	if got := rowText(cells, 0, 0, 3); got != "new" {
		t.Errorf("row 0 after clear = %q, want new", got)
	}
	for y := 1; y < 3; y++ {
		if cells[y][0].Rune != 0 {
			t.Errorf("row %d should be blank after clear", y)
		}
	}
}

func TestViewDescriptorSetDropsClosedWindows(t *testing.T) {
	v := NewView()
	v.Apply(&protocol.Update{
		Gen: 1,
		Windows: []protocol.WindowDesc{
			desc(1, "buffer", 0, 1, 10, 3),
			desc(2, "grid", 0, 0, 10, 1),
		},
		Content: []protocol.WindowContent{{
			ID:    2,
			Lines: []protocol.GridLine{{Line: 0, Content: []protocol.Span{{Text: "status"}}}},
		}},
	})
	// Window 2 closed: the next descriptor set omits it.
	v.Apply(&protocol.Update{
		Gen:     2,
		Windows: []protocol.WindowDesc{desc(1, "buffer", 0, 0, 10, 4)},
	})

	if _, ok := v.Window(2); ok {
		t.Error("window 2 should be gone after it leaves the descriptor set")
	}
	cells := v.Render(10, 4)
	if cells[0][0].Rune != 0 {
		t.Errorf("closed grid content should not render, got %q", cells[0][0].Rune)
	}
}

func TestViewTracksInputAndGen(t *testing.T) {
	v := NewView()
	x := 3
	v.Apply(&protocol.Update{
		Gen:     7,
		Windows: []protocol.WindowDesc{desc(1, "grid", 0, 0, 10, 1)},
		Input:   []protocol.InputRequest{{ID: 1, Kind: protocol.InputChar, XPos: &x}},
	})
	if v.Gen() != 7 {
		t.Errorf("gen = %d, want 7", v.Gen())
	}
	in := v.Input()
	if len(in) != 1 || in[0].Kind != protocol.InputChar || *in[0].XPos != 3 {
		t.Errorf("input = %+v, want one char request at xpos 3", in)
	}
}
