// Package script embeds a Lua runtime and exposes the Window API to it,
// so windowed applications can be written as scripts and driven through
// the protocol engine.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glkio/internal/engine"
	"github.com/dshills/glkio/internal/windowing"
)

// Runner executes Lua programs against one engine instance.
//
// gopher-lua's LState is not goroutine-safe, but the engine is
// single-threaded by contract anyway: one Runner, one goroutine.
type Runner struct {
	L   *lua.LState
	eng *engine.Engine
}

// NewRunner creates a Lua state with the glk module preloaded.
func NewRunner(eng *engine.Engine) *Runner {
	L := lua.NewState()
	r := &Runner{L: L, eng: eng}
	L.PreloadModule("glk", r.loader)
	return r
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.L.Close()
}

// RunFile executes the Lua program at path.
func (r *Runner) RunFile(path string) error {
	return r.L.DoFile(path)
}

// RunString executes a Lua program from source.
func (r *Runner) RunString(src string) error {
	return r.L.DoString(src)
}

// loader builds the glk module table.
func (r *Runner) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"window_open":     r.windowOpen,
		"window_split":    r.windowSplit,
		"window_close":    r.windowClose,
		"window_clear":    r.windowClear,
		"window_size":     r.windowSize,
		"set_arrangement": r.setArrangement,
		"move_cursor":     r.moveCursor,
		"set_style":       r.setStyle,
		"print":           r.print,
		"read_line":       r.readLine,
		"read_char":       r.readChar,
		"mem_stream":      r.memStream,
		"stream_write":    r.streamWrite,
		"stream_contents": r.streamContents,
		"stream_close":    r.streamClose,
		"set_echo":        r.setEcho,
	})
	L.Push(mod)
	return 1
}

// kindFromName maps a script kind name to a window kind.
func kindFromName(name string) (windowing.Kind, error) {
	switch name {
	case "buffer":
		return windowing.KindBuffer, nil
	case "grid":
		return windowing.KindGrid, nil
	case "graphics":
		return windowing.KindGraphics, nil
	default:
		return 0, fmt.Errorf("unknown window kind %q", name)
	}
}

// axisFromName maps a script axis name to a split axis.
func axisFromName(name string) (windowing.Axis, error) {
	switch name {
	case "left":
		return windowing.AxisLeft, nil
	case "right":
		return windowing.AxisRight, nil
	case "above":
		return windowing.AxisAbove, nil
	case "below":
		return windowing.AxisBelow, nil
	default:
		return 0, fmt.Errorf("unknown axis %q", name)
	}
}

// divFromName maps a script division name to a division policy.
func divFromName(name string) (windowing.Division, error) {
	switch name {
	case "fixed":
		return windowing.DivFixed, nil
	case "proportional":
		return windowing.DivProportional, nil
	default:
		return 0, fmt.Errorf("unknown division %q", name)
	}
}

// windowOpen implements glk.window_open(kind [, rock]) -> id.
func (r *Runner) windowOpen(L *lua.LState) int {
	kind, err := kindFromName(L.CheckString(1))
	if err != nil {
		L.RaiseError("window_open: %v", err)
		return 0
	}
	rock := L.OptInt(2, 0)
	id, err := r.eng.OpenRoot(kind, rock)
	if err != nil {
		L.RaiseError("window_open: %v", err)
		return 0
	}
	L.Push(lua.LNumber(id))
	return 1
}

// windowSplit implements
// glk.window_split(id, axis, division, size, kind [, rock]) -> id.
func (r *Runner) windowSplit(L *lua.LState) int {
	id := L.CheckInt(1)
	axis, err := axisFromName(L.CheckString(2))
	if err != nil {
		L.RaiseError("window_split: %v", err)
		return 0
	}
	div, err := divFromName(L.CheckString(3))
	if err != nil {
		L.RaiseError("window_split: %v", err)
		return 0
	}
	size := L.CheckInt(4)
	kind, err := kindFromName(L.CheckString(5))
	if err != nil {
		L.RaiseError("window_split: %v", err)
		return 0
	}
	rock := L.OptInt(6, 0)
	newID, err := r.eng.Split(id, axis, div, size, kind, rock)
	if err != nil {
		L.RaiseError("window_split: %v", err)
		return 0
	}
	L.Push(lua.LNumber(newID))
	return 1
}

// windowClose implements glk.window_close(id) -> readcount, writecount.
func (r *Runner) windowClose(L *lua.LState) int {
	counters, err := r.eng.CloseWindow(L.CheckInt(1))
	if err != nil {
		L.RaiseError("window_close: %v", err)
		return 0
	}
	L.Push(lua.LNumber(counters.ReadCount))
	L.Push(lua.LNumber(counters.WriteCount))
	return 2
}

// windowClear implements glk.window_clear(id).
func (r *Runner) windowClear(L *lua.LState) int {
	_ = r.eng.Clear(L.CheckInt(1))
	return 0
}

// windowSize implements glk.window_size(id) -> width, height.
func (r *Runner) windowSize(L *lua.LState) int {
	w, h := r.eng.WindowSize(L.CheckInt(1))
	L.Push(lua.LNumber(w))
	L.Push(lua.LNumber(h))
	return 2
}

// setArrangement implements
// glk.set_arrangement(id, axis, division, size [, key]).
func (r *Runner) setArrangement(L *lua.LState) int {
	id := L.CheckInt(1)
	axis, err := axisFromName(L.CheckString(2))
	if err != nil {
		L.RaiseError("set_arrangement: %v", err)
		return 0
	}
	div, err := divFromName(L.CheckString(3))
	if err != nil {
		L.RaiseError("set_arrangement: %v", err)
		return 0
	}
	size := L.CheckInt(4)
	key := L.OptInt(5, 0)
	// Arrangement calls on non-pair windows are permissive no-ops.
	_ = r.eng.SetArrangement(id, axis, div, size, key)
	return 0
}

// moveCursor implements glk.move_cursor(id, x, y).
func (r *Runner) moveCursor(L *lua.LState) int {
	_ = r.eng.MoveCursor(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3))
	return 0
}

// setStyle implements glk.set_style(id, style).
func (r *Runner) setStyle(L *lua.LState) int {
	_ = r.eng.SetStyle(L.CheckInt(1), windowing.Style(L.CheckString(2)))
	return 0
}

// print implements glk.print(id, text).
func (r *Runner) print(L *lua.LState) int {
	if err := r.eng.Print(L.CheckInt(1), L.CheckString(2)); err != nil {
		L.RaiseError("print: %v", err)
	}
	return 0
}

// readLine implements glk.read_line(id) -> string. It blocks until the
// host delivers a completed line.
func (r *Runner) readLine(L *lua.LState) int {
	value, err := r.eng.WaitLineInput(L.CheckInt(1))
	if err != nil {
		L.RaiseError("read_line: %v", err)
		return 0
	}
	L.Push(lua.LString(value))
	return 1
}

// readChar implements glk.read_char(id) -> string.
func (r *Runner) readChar(L *lua.LState) int {
	value, err := r.eng.WaitCharInput(L.CheckInt(1))
	if err != nil {
		L.RaiseError("read_char: %v", err)
		return 0
	}
	L.Push(lua.LString(value))
	return 1
}

// memStream implements glk.mem_stream([rock]) -> id.
func (r *Runner) memStream(L *lua.LState) int {
	id := r.eng.OpenMemoryStream(nil, L.OptInt(1, 0))
	L.Push(lua.LNumber(id))
	return 1
}

// streamWrite implements glk.stream_write(id, text).
func (r *Runner) streamWrite(L *lua.LState) int {
	if _, err := r.eng.StreamWrite(L.CheckInt(1), L.CheckString(2)); err != nil {
		L.RaiseError("stream_write: %v", err)
	}
	return 0
}

// streamContents implements glk.stream_contents(id) -> string.
func (r *Runner) streamContents(L *lua.LState) int {
	contents, ok := r.eng.StreamContents(L.CheckInt(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(contents))
	return 1
}

// streamClose implements glk.stream_close(id) -> readcount, writecount.
func (r *Runner) streamClose(L *lua.LState) int {
	counters, err := r.eng.CloseStream(L.CheckInt(1))
	if err != nil {
		L.RaiseError("stream_close: %v", err)
		return 0
	}
	L.Push(lua.LNumber(counters.ReadCount))
	L.Push(lua.LNumber(counters.WriteCount))
	return 2
}

// setEcho implements glk.set_echo(window_id, stream_id).
func (r *Runner) setEcho(L *lua.LState) int {
	_ = r.eng.SetEchoStream(L.CheckInt(1), L.CheckInt(2))
	return 0
}
