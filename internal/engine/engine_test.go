package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/glkio/internal/registry"
	"github.com/dshills/glkio/internal/windowing"
)

// initLine builds the host's init message.
func initLine(width, height int) string {
	s, _ := sjson.Set(`{"type":"init","gen":0}`, "metrics.width", width)
	s, _ = sjson.Set(s, "metrics.height", height)
	return s + "\n"
}

// lineReply builds a completed line input event.
func lineReply(gen, window int, value string) string {
	s, _ := sjson.Set(`{"type":"line"}`, "gen", gen)
	s, _ = sjson.Set(s, "window", window)
	s, _ = sjson.Set(s, "value", value)
	return s + "\n"
}

// charReply builds a single keystroke event.
func charReply(gen, window int, value string) string {
	s, _ := sjson.Set(`{"type":"char"}`, "gen", gen)
	s, _ = sjson.Set(s, "window", window)
	s, _ = sjson.Set(s, "value", value)
	return s + "\n"
}

// arrangeLine builds a client-driven resize event.
func arrangeLine(gen, width, height int) string {
	s, _ := sjson.Set(`{"type":"arrange"}`, "gen", gen)
	s, _ = sjson.Set(s, "metrics.width", width)
	s, _ = sjson.Set(s, "metrics.height", height)
	return s + "\n"
}

// newTestEngine wires an engine to a scripted host: every inbound event
// is prewritten, outbound updates land in the returned buffer.
func newTestEngine(t *testing.T, hostInput string) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(strings.NewReader(hostInput), &out), &out
}

// updateLines splits the output buffer into its JSON lines.
func updateLines(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	raw := strings.TrimSuffix(out.String(), "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func TestScenarioHelloLook(t *testing.T) {
	e, out := newTestEngine(t, initLine(80, 24)+lineReply(1, 1, "look"))

	id, err := e.OpenRoot(windowing.KindBuffer, 201)
	if err != nil {
		t.Fatalf("OpenRoot failed: %v", err)
	}
	if id != 1 {
		t.Errorf("root id = %d, want 1", id)
	}
	if err := e.Print(id, "Hello"); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	got, err := e.WaitLineInput(id)
	if err != nil {
		t.Fatalf("WaitLineInput failed: %v", err)
	}
	if got != "look" {
		t.Errorf("input = %q, want %q", got, "look")
	}
	if e.State() != StateRunning {
		t.Errorf("state = %v, want running", e.State())
	}

	lines := updateLines(t, out)
	if len(lines) != 1 {
		t.Fatalf("got %d update lines, want 1", len(lines))
	}
	u := lines[0]
	if gjson.Get(u, "type").String() != "update" {
		t.Errorf("type = %q, want update", gjson.Get(u, "type").String())
	}
	if gjson.Get(u, "gen").Int() != 1 {
		t.Errorf("gen = %d, want 1", gjson.Get(u, "gen").Int())
	}
	if gjson.Get(u, "windows.0.id").Int() != 1 || gjson.Get(u, "windows.0.type").String() != "buffer" {
		t.Errorf("descriptor = %s", gjson.Get(u, "windows.0").Raw)
	}
	if gjson.Get(u, "windows.0.rock").Int() != 201 {
		t.Errorf("rock = %d, want 201", gjson.Get(u, "windows.0.rock").Int())
	}
	if gjson.Get(u, "content.0.id").Int() != 1 {
		t.Errorf("content id = %d, want 1", gjson.Get(u, "content.0.id").Int())
	}
	if gjson.Get(u, "content.0.text.0.content.0").String() != "Hello" {
		t.Errorf("span = %q, want Hello", gjson.Get(u, "content.0.text.0.content.0").String())
	}
	if gjson.Get(u, "input.0.id").Int() != 1 || gjson.Get(u, "input.0.type").String() != "line" {
		t.Errorf("input request = %s", gjson.Get(u, "input.0").Raw)
	}
}

func TestInitConsumedExactlyOnce(t *testing.T) {
	// Noise before init is discarded; init is consumed; the engine
	// proceeds with its metrics.
	noise := `{"type":"line","gen":0,"window":1,"value":"early"}` + "\n"
	e, _ := newTestEngine(t, noise+initLine(40, 12))

	id, err := e.OpenRoot(windowing.KindBuffer, 0)
	if err != nil {
		t.Fatalf("OpenRoot failed: %v", err)
	}
	if w, h := e.WindowSize(id); w != 40 || h != 12 {
		t.Errorf("root size = %dx%d, want 40x12", w, h)
	}
}

func TestOpenRootWithoutHost(t *testing.T) {
	e, _ := newTestEngine(t, "")
	if _, err := e.OpenRoot(windowing.KindBuffer, 0); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("err = %v, want ErrTransportClosed", err)
	}
}

func TestBadInitMetrics(t *testing.T) {
	e, _ := newTestEngine(t, `{"type":"init","gen":0,"metrics":{"width":0,"height":24}}`+"\n")
	if _, err := e.OpenRoot(windowing.KindBuffer, 0); !errors.Is(err, ErrBadInit) {
		t.Errorf("err = %v, want ErrBadInit", err)
	}
}

func TestGenerationMonotonicAndStaleReject(t *testing.T) {
	host := initLine(80, 24) +
		lineReply(1, 1, "first") +
		lineReply(1, 1, "stale") + // wrong gen for the second wait
		lineReply(2, 1, "second")
	e, out := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)

	if got, _ := e.WaitLineInput(id); got != "first" {
		t.Errorf("first wait = %q", got)
	}
	got, err := e.WaitLineInput(id)
	if err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if got != "second" {
		t.Errorf("second wait = %q, want %q (stale reply must be discarded)", got, "second")
	}

	lines := updateLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("got %d update lines, want 2", len(lines))
	}
	for i, line := range lines {
		if g := gjson.Get(line, "gen").Int(); g != int64(i+1) {
			t.Errorf("flush %d carries gen %d, want %d", i, g, i+1)
		}
	}
}

func TestFlushCoalescesGridRow(t *testing.T) {
	host := initLine(80, 24) + charReply(1, 2, " ")
	e, out := newTestEngine(t, host)

	bufID, _ := e.OpenRoot(windowing.KindBuffer, 0)
	gridID, err := e.Split(bufID, windowing.AxisAbove, windowing.DivFixed, 3, windowing.KindGrid, 0)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	// Several writes to row 0; the update must carry one entry with the
	// final content.
	e.MoveCursor(gridID, 0, 0)
	e.Print(gridID, "aaaa")
	e.MoveCursor(gridID, 0, 0)
	e.Print(gridID, "bbbb")
	e.MoveCursor(gridID, 0, 0)
	e.Print(gridID, "Score")

	if _, err := e.WaitCharInput(gridID); err != nil {
		t.Fatalf("WaitCharInput failed: %v", err)
	}

	u := updateLines(t, out)[0]
	var gridContent gjson.Result
	gjson.Get(u, "content").ForEach(func(_, c gjson.Result) bool {
		if c.Get("id").Int() == int64(gridID) {
			gridContent = c
		}
		return true
	})
	lines := gridContent.Get("lines").Array()
	if len(lines) != 1 {
		t.Fatalf("got %d changed lines, want 1", len(lines))
	}
	if lines[0].Get("line").Int() != 0 {
		t.Errorf("line = %d, want 0", lines[0].Get("line").Int())
	}
	text := lines[0].Get("content.0").String()
	if !strings.HasPrefix(text, "Score") {
		t.Errorf("row content = %q, want final content starting with Score", text)
	}
	// Cursor hint for the grid window.
	if gjson.Get(u, "input.0.xpos").Int() != 5 {
		t.Errorf("xpos = %d, want 5", gjson.Get(u, "input.0.xpos").Int())
	}
}

func TestSplitFixedAboveScenario(t *testing.T) {
	e, _ := newTestEngine(t, initLine(80, 24))

	bufID, _ := e.OpenRoot(windowing.KindBuffer, 0)
	gridID, err := e.Split(bufID, windowing.AxisAbove, windowing.DivFixed, 3, windowing.KindGrid, 0)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	rootID := 0
	e.EachWindow(func(w *windowing.Window) bool {
		if w.Parent == 0 {
			rootID = w.ID
		}
		return true
	})
	root, _ := e.windows.Window(rootID)
	if root.Kind != windowing.KindPair {
		t.Fatal("tree root should be a pair after split")
	}
	if root.Child1 == 0 || root.Child2 == 0 {
		t.Error("pair must have two children")
	}
	if _, h := e.WindowSize(gridID); h != 3 {
		t.Errorf("grid height = %d, want 3", h)
	}
	if _, h := e.WindowSize(bufID); h != 21 {
		t.Errorf("buffer height = %d, want 21", h)
	}
}

func TestCloseWindowCounters(t *testing.T) {
	host := initLine(80, 24) + lineReply(1, 2, "xy")
	e, _ := newTestEngine(t, host)

	bufID, _ := e.OpenRoot(windowing.KindBuffer, 0)
	gridID, _ := e.Split(bufID, windowing.AxisAbove, windowing.DivFixed, 3, windowing.KindGrid, 0)

	e.Print(gridID, "0123456789") // 10 characters written
	if _, err := e.WaitLineInput(gridID); err != nil {
		t.Fatalf("WaitLineInput failed: %v", err) // "xy": 2 characters read
	}

	counters, err := e.CloseWindow(gridID)
	if err != nil {
		t.Fatalf("CloseWindow failed: %v", err)
	}
	if counters.WriteCount != 10 {
		t.Errorf("write count = %d, want 10", counters.WriteCount)
	}
	if counters.ReadCount != 2 {
		t.Errorf("read count = %d, want 2", counters.ReadCount)
	}

	e.EachWindow(func(w *windowing.Window) bool {
		if w.ID == gridID {
			t.Error("closed window still iterated")
		}
		return true
	})
}

func TestArrangeDuringWait(t *testing.T) {
	host := initLine(80, 24) +
		arrangeLine(1, 100, 30) +
		lineReply(2, 1, "after resize")
	e, out := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)

	got, err := e.WaitLineInput(id)
	if err != nil {
		t.Fatalf("WaitLineInput failed: %v", err)
	}
	if got != "after resize" {
		t.Errorf("input = %q", got)
	}
	if w, h := e.WindowSize(id); w != 100 || h != 30 {
		t.Errorf("size after arrange = %dx%d, want 100x30", w, h)
	}

	lines := updateLines(t, out)
	if len(lines) != 2 {
		t.Fatalf("got %d update lines, want 2 (re-flush after arrange)", len(lines))
	}
	second := lines[1]
	if gjson.Get(second, "gen").Int() != 2 {
		t.Errorf("re-flush gen = %d, want 2", gjson.Get(second, "gen").Int())
	}
	if gjson.Get(second, "windows.0.width").Int() != 100 {
		t.Errorf("re-flushed descriptor width = %d, want 100", gjson.Get(second, "windows.0.width").Int())
	}
	if gjson.Get(second, "input.0.id").Int() != int64(id) {
		t.Error("re-flush must restate the outstanding input request")
	}
}

func TestRedrawReflushesGrid(t *testing.T) {
	host := initLine(80, 24) +
		charReply(1, 2, "q") +
		`{"type":"redraw","gen":2}` + "\n" +
		charReply(3, 2, "w")
	e, out := newTestEngine(t, host)

	bufID, _ := e.OpenRoot(windowing.KindBuffer, 0)
	gridID, _ := e.Split(bufID, windowing.AxisAbove, windowing.DivFixed, 2, windowing.KindGrid, 0)
	e.Print(gridID, "status")

	if _, err := e.WaitCharInput(gridID); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if _, err := e.WaitCharInput(gridID); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}

	lines := updateLines(t, out)
	if len(lines) != 3 {
		t.Fatalf("got %d update lines, want 3", len(lines))
	}
	redrawn := lines[2]
	if gjson.Get(redrawn, "gen").Int() != 3 {
		t.Errorf("redraw flush gen = %d, want 3", gjson.Get(redrawn, "gen").Int())
	}
	found := false
	gjson.Get(redrawn, "content").ForEach(func(_, c gjson.Result) bool {
		if c.Get("id").Int() == int64(gridID) && len(c.Get("lines").Array()) == 2 {
			found = true
		}
		return true
	})
	if !found {
		t.Errorf("redraw flush should resend all grid rows: %s", redrawn)
	}
	if !gjson.Get(redrawn, "windows").Exists() {
		t.Error("redraw flush should resend window descriptors")
	}
}

func TestWrongWindowInputDiscarded(t *testing.T) {
	host := initLine(80, 24) +
		lineReply(1, 99, "misaddressed") +
		charReply(1, 1, "z") + // wrong kind
		lineReply(1, 1, "right")
	e, _ := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)
	got, err := e.WaitLineInput(id)
	if err != nil {
		t.Fatalf("WaitLineInput failed: %v", err)
	}
	if got != "right" {
		t.Errorf("input = %q, want %q", got, "right")
	}
}

func TestMalformedLinesEventuallyFatal(t *testing.T) {
	garbage := strings.Repeat("not json\n", maxMalformed+1)
	e, _ := newTestEngine(t, initLine(80, 24)+garbage)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)
	if _, err := e.WaitLineInput(id); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("err = %v, want ErrTransportClosed after repeated retries", err)
	}
}

func TestWaitBeforeInit(t *testing.T) {
	e, _ := newTestEngine(t, "")
	if _, err := e.WaitLineInput(1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}

func TestBufferClearFlag(t *testing.T) {
	host := initLine(80, 24) + lineReply(1, 1, "ok")
	e, out := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)
	e.Print(id, "gone")
	e.Clear(id)
	e.Print(id, "fresh")
	e.WaitLineInput(id)

	u := updateLines(t, out)[0]
	if !gjson.Get(u, "content.0.clear").Bool() {
		t.Error("clear flag missing")
	}
	if gjson.Get(u, "content.0.text.0.content.0").String() != "fresh" {
		t.Errorf("post-clear text = %q, want fresh", gjson.Get(u, "content.0.text.0.content.0").String())
	}
	if strings.Contains(u, "gone") {
		t.Error("cleared text should not be flushed")
	}
}

func TestStyledSpansOnWire(t *testing.T) {
	host := initLine(80, 24) + lineReply(1, 1, "ok")
	e, out := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)
	e.Print(id, "plain ")
	e.SetStyle(id, windowing.StyleEmphasized)
	e.Print(id, "loud")
	e.WaitLineInput(id)

	u := updateLines(t, out)[0]
	spans := gjson.Get(u, "content.0.text.0.content").Array()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Type != gjson.String || spans[0].String() != "plain " {
		t.Errorf("spans[0] = %s, want raw string", spans[0].Raw)
	}
	if spans[1].Get("style").String() != "emphasized" || spans[1].Get("text").String() != "loud" {
		t.Errorf("spans[1] = %s, want styled object", spans[1].Raw)
	}
}

func TestEchoStreamThroughEngine(t *testing.T) {
	host := initLine(80, 24)
	e, _ := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 0)
	echoID := e.OpenMemoryStream(nil, 7)
	if err := e.SetEchoStream(id, echoID); err != nil {
		t.Fatalf("SetEchoStream failed: %v", err)
	}

	e.Print(id, "echoed")

	contents, ok := e.StreamContents(echoID)
	if !ok || string(contents) != "echoed" {
		t.Errorf("echo contents = %q, want %q", contents, "echoed")
	}
	if e.EchoStream(id) != echoID {
		t.Errorf("EchoStream = %d, want %d", e.EchoStream(id), echoID)
	}

	if _, err := e.CloseStream(echoID); err != nil {
		t.Fatalf("CloseStream failed: %v", err)
	}
	if e.EchoStream(id) != 0 {
		t.Error("echo reference should be nulled after close")
	}
}

func TestFilerefLifecycle(t *testing.T) {
	e, _ := newTestEngine(t, "")

	id := e.CreateFileref("save.dat", 301)
	if name, ok := e.FilerefName(id); !ok || name != "save.dat" {
		t.Errorf("fileref name = (%q, %v), want (save.dat, true)", name, ok)
	}
	if rock, ok := e.Registry().Rock(registry.ClassFileref, id); !ok || rock != 301 {
		t.Errorf("fileref rock = (%d, %v), want (301, true)", rock, ok)
	}

	if err := e.DestroyFileref(id); err != nil {
		t.Fatalf("DestroyFileref failed: %v", err)
	}
	if _, ok := e.FilerefName(id); ok {
		t.Error("destroyed fileref still resolvable")
	}
	if _, ok := e.Registry().Rock(registry.ClassFileref, id); ok {
		t.Error("destroyed fileref still registered")
	}
	if err := e.DestroyFileref(id); !errors.Is(err, ErrFilerefNotFound) {
		t.Errorf("err = %v, want ErrFilerefNotFound", err)
	}
}

func TestRegistryTracksLifecycle(t *testing.T) {
	host := initLine(80, 24)
	e, _ := newTestEngine(t, host)

	id, _ := e.OpenRoot(windowing.KindBuffer, 77)

	if rock, ok := e.Registry().Rock(registry.ClassWindow, id); !ok || rock != 77 {
		t.Errorf("window rock = (%d, %v), want (77, true)", rock, ok)
	}

	e.CloseWindow(id)
	if _, ok := e.Registry().Rock(registry.ClassWindow, id); ok {
		t.Error("closed window still registered")
	}
	if e.Registry().Len() != 0 {
		t.Errorf("registry len = %d, want 0 after close", e.Registry().Len())
	}
}
