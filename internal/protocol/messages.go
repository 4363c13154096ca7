// Package protocol defines the newline-delimited JSON wire format spoken
// between the engine and its host: one update object per flush going out,
// one event object per blocking wait coming in.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Message type tags.
const (
	TypeUpdate  = "update"
	TypeInit    = "init"
	TypeLine    = "line"
	TypeChar    = "char"
	TypeArrange = "arrange"
	TypeRedraw  = "redraw"
	TypeRefresh = "refresh"
)

// Input request kinds.
const (
	InputLine = "line"
	InputChar = "char"
)

// Update is one outbound flush: everything that changed since the last
// one, plus the current input request. The generation number is the
// correlation key the host must echo back.
type Update struct {
	Type    string          `json:"type"`
	Gen     int             `json:"gen"`
	Windows []WindowDesc    `json:"windows,omitempty"`
	Content []WindowContent `json:"content,omitempty"`
	Input   []InputRequest  `json:"input,omitempty"`
}

// WindowDesc describes one window's identity and geometry. Descriptors
// are sent only after a structural change.
type WindowDesc struct {
	ID     int    `json:"id"`
	Kind   string `json:"type"`
	Rock   int    `json:"rock"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WindowContent carries one window's content delta: changed grid lines,
// appended buffer paragraphs, or a clear.
type WindowContent struct {
	ID    int         `json:"id"`
	Clear bool        `json:"clear,omitempty"`
	Lines []GridLine  `json:"lines,omitempty"`
	Text  []Paragraph `json:"text,omitempty"`
}

// GridLine is a changed grid row with its full final content.
type GridLine struct {
	Line    int    `json:"line"`
	Content []Span `json:"content"`
}

// Paragraph is one appended buffer paragraph.
type Paragraph struct {
	Content []Span `json:"content"`
}

// InputRequest names the window waiting for input and what kind it
// wants. XPos/YPos carry the cursor hint for grid windows.
type InputRequest struct {
	ID   int    `json:"id"`
	Kind string `json:"type"`
	XPos *int   `json:"xpos,omitempty"`
	YPos *int   `json:"ypos,omitempty"`
}

// Span is a styled run of text. On the wire a span in the normal style
// is a raw JSON string; anything else is a {"style":S,"text":T} object.
type Span struct {
	Style string
	Text  string
}

// styledSpan is the object form of a span.
type styledSpan struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

// MarshalJSON implements json.Marshaler.
func (s Span) MarshalJSON() ([]byte, error) {
	if s.Style == "" || s.Style == "normal" {
		return json.Marshal(s.Text)
	}
	return json.Marshal(styledSpan{Style: s.Style, Text: s.Text})
}

// UnmarshalJSON implements json.Unmarshaler, accepting both forms.
func (s *Span) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s.Style = "normal"
		return json.Unmarshal(data, &s.Text)
	}
	var obj styledSpan
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	s.Style = obj.Style
	s.Text = obj.Text
	return nil
}

// Metrics is the display area granted by the host, in content units.
type Metrics struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Event is one inbound message from the host.
type Event struct {
	Type    string   `json:"type"`
	Gen     int      `json:"gen"`
	Window  int      `json:"window,omitempty"`
	Value   string   `json:"value,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`
}
