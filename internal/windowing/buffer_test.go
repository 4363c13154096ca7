package windowing

import "testing"

func TestPendingTextSingleParagraph(t *testing.T) {
	p := NewPendingText()

	p.Append("Hello", StyleNormal)
	p.Append(", world", StyleNormal)

	clear, paras := p.Take()
	if clear {
		t.Error("no clear expected")
	}
	if len(paras) != 1 {
		t.Fatalf("len(paras) = %d, want 1", len(paras))
	}
	if len(paras[0]) != 1 || paras[0][0].Text != "Hello, world" {
		t.Errorf("paragraph = %+v, want one merged span", paras[0])
	}
}

func TestPendingTextNewlinesSplitParagraphs(t *testing.T) {
	p := NewPendingText()

	p.Append("one\ntwo\n", StyleNormal)
	p.Append("three", StyleNormal)

	_, paras := p.Take()
	if len(paras) != 3 {
		t.Fatalf("len(paras) = %d, want 3", len(paras))
	}
	for i, want := range []string{"one", "two", "three"} {
		if len(paras[i]) != 1 || paras[i][0].Text != want {
			t.Errorf("paras[%d] = %+v, want %q", i, paras[i], want)
		}
	}
}

func TestPendingTextBlankLine(t *testing.T) {
	p := NewPendingText()

	p.Append("a\n\nb", StyleNormal)

	_, paras := p.Take()
	if len(paras) != 3 {
		t.Fatalf("len(paras) = %d, want 3", len(paras))
	}
	if len(paras[1]) != 0 {
		t.Errorf("middle paragraph = %+v, want empty", paras[1])
	}
}

func TestPendingTextStyleRuns(t *testing.T) {
	p := NewPendingText()

	p.Append("plain ", StyleNormal)
	p.Append("bold", StyleEmphasized)
	p.Append(" more", StyleEmphasized)

	_, paras := p.Take()
	if len(paras) != 1 {
		t.Fatalf("len(paras) = %d, want 1", len(paras))
	}
	spans := paras[0]
	if len(spans) != 2 {
		t.Fatalf("len(spans) = %d, want 2: %+v", len(spans), spans)
	}
	if spans[1].Style != StyleEmphasized || spans[1].Text != "bold more" {
		t.Errorf("spans[1] = %+v, want merged emphasized run", spans[1])
	}
}

func TestPendingTextClear(t *testing.T) {
	p := NewPendingText()
	p.Append("dropped", StyleNormal)

	p.Clear()
	p.Append("kept", StyleNormal)

	clear, paras := p.Take()
	if !clear {
		t.Error("Take should report the clear")
	}
	if len(paras) != 1 || paras[0][0].Text != "kept" {
		t.Errorf("paras = %+v, want only post-clear text", paras)
	}

	// Flag does not persist past Take.
	if clear, _ := p.Take(); clear {
		t.Error("clear flag should reset after Take")
	}
}

func TestPendingTextEmpty(t *testing.T) {
	p := NewPendingText()
	if !p.Empty() {
		t.Error("new accumulator should be empty")
	}
	p.Append("x", StyleNormal)
	if p.Empty() {
		t.Error("accumulator with text should not be empty")
	}
	p.Take()
	if !p.Empty() {
		t.Error("accumulator should be empty after Take")
	}
	p.Clear()
	if p.Empty() {
		t.Error("pending clear should count as non-empty")
	}
}
