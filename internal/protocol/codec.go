package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed indicates a line that did not parse as a JSON message.
// The engine skips such lines; repeated failures end the transport.
var ErrMalformed = errors.New("malformed protocol line")

// Encoder writes one compact JSON value per line.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder creates an encoder on w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteUpdate serializes one update as a single line and flushes it.
func (e *Encoder) WriteUpdate(u *Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// WriteEvent serializes one event as a single line and flushes it.
// Hosts use this side of the codec; the engine only reads events.
func (e *Encoder) WriteEvent(ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder reads newline-delimited JSON messages.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder creates a decoder on r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Decoder{sc: sc}
}

// ReadEvent reads the next inbound event. It returns io.EOF when the
// transport closes and ErrMalformed (wrapped with the offending line's
// parse error) for a line that is not a JSON event.
func (d *Decoder) ReadEvent() (*Event, error) {
	if !d.sc.Scan() {
		if err := d.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var ev Event
	if err := json.Unmarshal(d.sc.Bytes(), &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &ev, nil
}

// ReadUpdate reads the next outbound update. Hosts use this side.
func (d *Decoder) ReadUpdate() (*Update, error) {
	if !d.sc.Scan() {
		if err := d.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var u Update
	if err := json.Unmarshal(d.sc.Bytes(), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &u, nil
}
