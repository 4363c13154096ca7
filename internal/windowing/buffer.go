package windowing

// PendingText accumulates output written to a KindBuffer window between
// flushes. History is not retained: once taken, content belongs to the
// host and the accumulator starts over.
type PendingText struct {
	paragraphs [][]Span

	// lineOpen is true when the last paragraph can still receive text
	// (no newline has closed it yet).
	lineOpen bool

	// clear is set by Clear and consumed by Take.
	clear bool
}

// NewPendingText creates an empty accumulator.
func NewPendingText() *PendingText {
	return &PendingText{}
}

// Append adds text in the given style. Newlines close the current
// paragraph; adjacent spans in the same style merge.
func (p *PendingText) Append(text string, style Style) {
	start := 0
	for i, r := range text {
		if r != '\n' {
			continue
		}
		p.appendSegment(text[start:i], style)
		p.lineOpen = false
		start = i + 1
	}
	if start < len(text) {
		p.appendSegment(text[start:], style)
	}
}

// appendSegment adds one newline-free segment to the open paragraph,
// opening one if needed.
func (p *PendingText) appendSegment(seg string, style Style) {
	if !p.lineOpen {
		p.paragraphs = append(p.paragraphs, nil)
		p.lineOpen = true
	}
	if seg == "" {
		return
	}
	last := len(p.paragraphs) - 1
	spans := p.paragraphs[last]
	if n := len(spans); n > 0 && spans[n-1].Style == style {
		spans[n-1].Text += seg
	} else {
		spans = append(spans, Span{Style: style, Text: seg})
	}
	p.paragraphs[last] = spans
}

// Clear drops any pending paragraphs and records that the host must
// clear the window before displaying what comes next.
func (p *PendingText) Clear() {
	p.paragraphs = nil
	p.lineOpen = false
	p.clear = true
}

// Empty returns true if neither content nor a clear is pending.
func (p *PendingText) Empty() bool {
	return len(p.paragraphs) == 0 && !p.clear
}

// Take returns the pending clear flag and paragraphs, then resets.
func (p *PendingText) Take() (clear bool, paragraphs [][]Span) {
	clear = p.clear
	paragraphs = p.paragraphs
	p.clear = false
	p.paragraphs = nil
	p.lineOpen = false
	return clear, paragraphs
}
