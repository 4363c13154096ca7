package main

import (
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glkio/internal/config"
	"github.com/dshills/glkio/internal/logging"
	"github.com/dshills/glkio/internal/protocol"
	"github.com/dshills/glkio/internal/term"
)

// inputMode is what the interpreter is currently waiting for.
type inputMode int

const (
	modeNone inputMode = iota
	modeLine
	modeChar
)

// session owns one interpreter child process and the terminal it is
// rendered on.
type session struct {
	child   *exec.Cmd
	enc     *protocol.Encoder
	screen  tcell.Screen
	view    *term.View
	palette *term.Palette
	cfg     config.Config
	cfgPath string
	log     *logging.Logger

	updates chan *protocol.Update
	sendMu  sync.Mutex

	mode    inputMode
	inputID int
	lineBuf []rune
}

// newSession wires pipes to the child process and prepares the screen.
// The child is not started yet; runLoop does that.
func newSession(child *exec.Cmd, cfg config.Config, cfgPath string, log *logging.Logger) (*session, error) {
	stdin, err := child.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("child stdin: %w", err)
	}
	stdout, err := child.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("child stdout: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}

	s := &session{
		child:   child,
		enc:     protocol.NewEncoder(stdin),
		screen:  screen,
		view:    term.NewView(),
		palette: term.NewPalette(cfg.Term),
		cfg:     cfg,
		cfgPath: cfgPath,
		log:     log,
		updates: make(chan *protocol.Update, 8),
	}
	go s.readUpdates(stdout)
	return s, nil
}

// readUpdates decodes child output onto the updates channel, closing it
// when the child's stdout ends.
func (s *session) readUpdates(r io.Reader) {
	dec := protocol.NewDecoder(r)
	for {
		u, err := dec.ReadUpdate()
		if err != nil {
			if err != io.EOF {
				s.log.Error("reading update: %v", err)
			}
			close(s.updates)
			return
		}
		s.updates <- u
	}
}

// runLoop starts the child and runs the terminal event loop until the
// child exits or the user quits.
func (s *session) runLoop() error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer s.screen.Fini()

	if err := s.child.Start(); err != nil {
		return fmt.Errorf("starting interpreter: %w", err)
	}
	defer func() { _ = s.child.Wait() }()

	width, height := s.screen.Size()
	if err := s.sendEvent(&protocol.Event{
		Type:    protocol.TypeInit,
		Metrics: &protocol.Metrics{Width: width, Height: height},
	}); err != nil {
		return err
	}

	keys := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			keys <- ev
		}
	}()

	cfgEvents, closeWatch := s.watchConfig()
	defer closeWatch()

	for {
		select {
		case u, ok := <-s.updates:
			if !ok {
				return nil
			}
			s.apply(u)
		case ev := <-keys:
			quit, err := s.handleScreenEvent(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case <-cfgEvents:
			s.reloadConfig()
		}
	}
}

// watchConfig watches the config file for changes, if one was given.
func (s *session) watchConfig() (<-chan struct{}, func()) {
	changed := make(chan struct{}, 1)
	if s.cfgPath == "" {
		return changed, func() {}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn("config watch unavailable: %v", err)
		return changed, func() {}
	}
	if err := w.Add(s.cfgPath); err != nil {
		s.log.Warn("watching %s: %v", s.cfgPath, err)
		_ = w.Close()
		return changed, func() {}
	}
	go func() {
		for ev := range w.Events {
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				select {
				case changed <- struct{}{}:
				default:
				}
			}
		}
	}()
	return changed, func() { _ = w.Close() }
}

func (s *session) reloadConfig() {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		s.log.Warn("config reload failed: %v", err)
		return
	}
	s.cfg = cfg
	s.palette = term.NewPalette(cfg.Term)
	s.log.Info("config reloaded from %s", s.cfgPath)
	s.render()
}

// apply folds an update into the view and adopts its input request.
func (s *session) apply(u *protocol.Update) {
	s.view.Apply(u)
	s.mode = modeNone
	s.lineBuf = s.lineBuf[:0]
	for _, req := range u.Input {
		switch req.Kind {
		case protocol.InputLine:
			s.mode = modeLine
			s.inputID = req.ID
		case protocol.InputChar:
			s.mode = modeChar
			s.inputID = req.ID
		}
	}
	s.render()
}

func (s *session) handleScreenEvent(ev tcell.Event) (quit bool, err error) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		width, height := e.Size()
		s.screen.Sync()
		if err := s.sendEvent(&protocol.Event{
			Type:    protocol.TypeArrange,
			Gen:     s.view.Gen(),
			Metrics: &protocol.Metrics{Width: width, Height: height},
		}); err != nil {
			return false, err
		}
	case *tcell.EventKey:
		return s.handleKey(e)
	}
	return false, nil
}

func (s *session) handleKey(e *tcell.EventKey) (quit bool, err error) {
	// Host-level keys work in any mode.
	switch e.Key() {
	case tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyCtrlL:
		s.screen.Sync()
		return false, s.sendEvent(&protocol.Event{
			Type: protocol.TypeRedraw,
			Gen:  s.view.Gen(),
		})
	}

	switch s.mode {
	case modeChar:
		value := charValue(e)
		if value == "" {
			return false, nil
		}
		s.mode = modeNone
		return false, s.sendEvent(&protocol.Event{
			Type:   protocol.TypeChar,
			Gen:    s.view.Gen(),
			Window: s.inputID,
			Value:  value,
		})
	case modeLine:
		switch e.Key() {
		case tcell.KeyEnter:
			line := string(s.lineBuf)
			s.view.Echo(s.inputID, s.cfg.Term.InputPrefix+line, "input")
			s.lineBuf = s.lineBuf[:0]
			s.mode = modeNone
			return false, s.sendEvent(&protocol.Event{
				Type:   protocol.TypeLine,
				Gen:    s.view.Gen(),
				Window: s.inputID,
				Value:  line,
			})
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(s.lineBuf) > 0 {
				s.lineBuf = s.lineBuf[:len(s.lineBuf)-1]
			}
			s.render()
		case tcell.KeyRune:
			s.lineBuf = append(s.lineBuf, e.Rune())
			s.render()
		}
	}
	return false, nil
}

// charValue maps a key press to a single-key input value: the rune
// itself, or a name for special keys.
func charValue(e *tcell.EventKey) string {
	switch e.Key() {
	case tcell.KeyRune:
		return string(e.Rune())
	case tcell.KeyEnter:
		return "return"
	case tcell.KeyEscape:
		return "escape"
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "delete"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyPgUp:
		return "pageup"
	case tcell.KeyPgDn:
		return "pagedown"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	default:
		return ""
	}
}

func (s *session) sendEvent(ev *protocol.Event) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.enc.WriteEvent(ev); err != nil {
		return fmt.Errorf("writing event to interpreter: %w", err)
	}
	return nil
}

// render repaints the whole screen from the view.
func (s *session) render() {
	width, height := s.screen.Size()
	s.screen.Clear()

	cells := s.view.Render(width, height)
	for y, row := range cells {
		for x, c := range row {
			if c.Rune == 0 {
				continue
			}
			s.screen.SetContent(x, y, c.Rune, nil, s.palette.Style(c.Style))
		}
	}

	s.screen.HideCursor()
	switch s.mode {
	case modeLine:
		if x, y, ok := s.view.BufferEnd(s.inputID); ok {
			x = s.drawString(x, y, s.cfg.Term.InputPrefix, "input")
			x = s.drawString(x, y, string(s.lineBuf), "input")
			s.screen.ShowCursor(x, y)
		}
	case modeChar:
		for _, req := range s.view.Input() {
			if req.ID != s.inputID || req.XPos == nil || req.YPos == nil {
				continue
			}
			if d, ok := s.view.Window(req.ID); ok {
				s.screen.ShowCursor(d.Left+*req.XPos, d.Top+*req.YPos)
			}
		}
	}

	s.screen.Show()
}

func (s *session) drawString(x, y int, text, style string) int {
	for _, r := range text {
		s.screen.SetContent(x, y, r, nil, s.palette.Style(style))
		x++
	}
	return x
}
