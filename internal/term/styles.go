package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/glkio/internal/config"
)

// Palette maps span style names to terminal styles.
type Palette struct {
	styles map[string]tcell.Style
}

// NewPalette builds a palette from the term configuration. Unknown
// color names fall back to the terminal default.
func NewPalette(cfg config.TermConfig) *Palette {
	p := &Palette{styles: make(map[string]tcell.Style)}
	for name, colorName := range cfg.Colors {
		style := tcell.StyleDefault
		if c, ok := tcell.ColorNames[colorName]; ok {
			style = style.Foreground(c)
		}
		p.styles[name] = style
	}
	// Presentation defaults for styles the config leaves unmapped.
	if _, ok := p.styles["emphasized"]; !ok {
		p.styles["emphasized"] = tcell.StyleDefault.Bold(true)
	}
	if _, ok := p.styles["header"]; !ok {
		p.styles["header"] = tcell.StyleDefault.Bold(true).Underline(true)
	}
	if _, ok := p.styles["input"]; !ok {
		p.styles["input"] = tcell.StyleDefault.Bold(true)
	}
	return p
}

// Style returns the terminal style for a span style name.
func (p *Palette) Style(name string) tcell.Style {
	if s, ok := p.styles[name]; ok {
		return s
	}
	return tcell.StyleDefault
}
