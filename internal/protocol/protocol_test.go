package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestSpanMarshalPlain(t *testing.T) {
	data, err := (Span{Style: "normal", Text: "Hello"}).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(data) != `"Hello"` {
		t.Errorf("marshal = %s, want plain string", data)
	}

	data, _ = (Span{Text: "bare"}).MarshalJSON()
	if string(data) != `"bare"` {
		t.Errorf("zero style marshal = %s, want plain string", data)
	}
}

func TestSpanMarshalStyled(t *testing.T) {
	data, err := (Span{Style: "emphasized", Text: "loud"}).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if gjson.GetBytes(data, "style").String() != "emphasized" {
		t.Errorf("style missing in %s", data)
	}
	if gjson.GetBytes(data, "text").String() != "loud" {
		t.Errorf("text missing in %s", data)
	}
}

func TestSpanUnmarshalBothForms(t *testing.T) {
	var s Span
	if err := s.UnmarshalJSON([]byte(`"plain"`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if s.Style != "normal" || s.Text != "plain" {
		t.Errorf("span = %+v, want normal/plain", s)
	}

	if err := s.UnmarshalJSON([]byte(`{"style":"header","text":"Title"}`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if s.Style != "header" || s.Text != "Title" {
		t.Errorf("span = %+v, want header/Title", s)
	}
}

func TestEncoderWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	x, y := 3, 0
	err := enc.WriteUpdate(&Update{
		Type: TypeUpdate,
		Gen:  1,
		Windows: []WindowDesc{
			{ID: 1, Kind: "buffer", Rock: 201, Width: 80, Height: 24},
		},
		Content: []WindowContent{
			{ID: 1, Text: []Paragraph{{Content: []Span{{Style: "normal", Text: "Hello"}}}}},
		},
		Input: []InputRequest{{ID: 1, Kind: InputLine, XPos: &x, YPos: &y}},
	})
	if err != nil {
		t.Fatalf("WriteUpdate failed: %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("update must end with a newline")
	}
	if strings.Count(out, "\n") != 1 {
		t.Error("update must be exactly one line")
	}

	line := strings.TrimSuffix(out, "\n")
	if gjson.Get(line, "gen").Int() != 1 {
		t.Errorf("gen = %d, want 1", gjson.Get(line, "gen").Int())
	}
	if gjson.Get(line, "windows.0.type").String() != "buffer" {
		t.Errorf("window type = %q", gjson.Get(line, "windows.0.type").String())
	}
	if gjson.Get(line, "content.0.text.0.content.0").String() != "Hello" {
		t.Errorf("span = %q, want Hello", gjson.Get(line, "content.0.text.0.content.0").String())
	}
	if gjson.Get(line, "input.0.xpos").Int() != 3 {
		t.Errorf("xpos = %d, want 3", gjson.Get(line, "input.0.xpos").Int())
	}
}

func TestDecoderReadsEvents(t *testing.T) {
	input := `{"type":"init","gen":0,"metrics":{"width":80,"height":24}}
{"type":"line","gen":1,"window":1,"value":"look"}
`
	dec := NewDecoder(strings.NewReader(input))

	ev, err := dec.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if ev.Type != TypeInit || ev.Metrics == nil || ev.Metrics.Width != 80 {
		t.Errorf("init event = %+v", ev)
	}

	ev, err = dec.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if ev.Type != TypeLine || ev.Gen != 1 || ev.Window != 1 || ev.Value != "look" {
		t.Errorf("line event = %+v", ev)
	}

	if _, err := dec.ReadEvent(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF at end of input", err)
	}
}

func TestDecoderMalformedLine(t *testing.T) {
	dec := NewDecoder(strings.NewReader("this is not json\n"))

	_, err := dec.ReadEvent()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteUpdate(&Update{
		Type: TypeUpdate,
		Gen:  7,
		Content: []WindowContent{
			{ID: 2, Clear: true, Lines: []GridLine{
				{Line: 0, Content: []Span{{Style: "emphasized", Text: "hi"}}},
			}},
		},
	})

	u, err := NewDecoder(&buf).ReadUpdate()
	if err != nil {
		t.Fatalf("ReadUpdate failed: %v", err)
	}
	if u.Gen != 7 || !u.Content[0].Clear {
		t.Errorf("update = %+v", u)
	}
	span := u.Content[0].Lines[0].Content[0]
	if span.Style != "emphasized" || span.Text != "hi" {
		t.Errorf("span = %+v", span)
	}
}
