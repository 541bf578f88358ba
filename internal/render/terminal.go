package render

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// termColumnWidth is the number of screen columns one surface unit spans;
// katakana glyphs are double width in terminals.
const termColumnWidth = 2

type termCell struct {
	glyph rune
	px    color.RGBA // premultiplied
}

// TermSurface is a character-grid Surface on a tcell screen. One surface unit
// is one glyph cell, so it pairs with a cell size of 1. Colours are tracked
// per cell so the translucent fade dims earlier glyphs the way a raster
// canvas would.
type TermSurface struct {
	Screen tcell.Screen

	mu     sync.Mutex
	width  int
	height int
	cells  []termCell
	fill   color.RGBA
}

func NewTermSurface(screen tcell.Screen) *TermSurface {
	return &TermSurface{Screen: screen}
}

// Start initialises the screen and hides the cursor.
func (t *TermSurface) Start(ctx context.Context) error {
	if t.Screen == nil {
		return errors.New("terminal screen not configured")
	}
	if err := t.Screen.Init(); err != nil {
		return err
	}
	t.Screen.HideCursor()
	t.Screen.Clear()
	return nil
}

// Stop restores the terminal. PollEvent returns nil afterwards, ending Watch.
func (t *TermSurface) Stop() error {
	if t.Screen != nil {
		t.Screen.Fini()
	}
	return nil
}

// Watch forwards terminal events until ctx is done or the screen is
// finalised: resizes call onResize, Esc / Ctrl-C / q call onExit.
func (t *TermSurface) Watch(ctx context.Context, onResize func(), onExit func()) {
	for {
		if ctx.Err() != nil {
			return
		}
		ev := t.Screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			t.Screen.Sync()
			if onResize != nil {
				onResize()
			}
		case *tcell.EventKey:
			if isExitKey(ev) && onExit != nil {
				onExit()
			}
		}
	}
}

func isExitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// Viewport reports the screen size in surface units.
func (t *TermSurface) Viewport() (int, int) {
	if t.Screen == nil {
		return 0, 0
	}
	w, h := t.Screen.Size()
	return w / termColumnWidth, h
}

func (t *TermSurface) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.width, t.height = width, height
	t.cells = make([]termCell, width*height)
	if t.Screen != nil {
		t.Screen.Clear()
	}
}

func (t *TermSurface) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *TermSurface) SetFillColor(c color.Color) {
	t.mu.Lock()
	t.fill = color.RGBAModel.Convert(c).(color.RGBA)
	t.mu.Unlock()
}

// SetFontSize is a no-op; the terminal owns the font.
func (t *TermSurface) SetFontSize(size int) {}

func (t *TermSurface) FillRect(x, y, width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+width, t.width), min(y+height, t.height)
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			c := &t.cells[row*t.width+col]
			c.px = over(t.fill, c.px)
		}
	}
}

// FillText puts the first rune of text in the cell whose bottom edge is the
// baseline y, matching where a canvas would draw it.
func (t *TermSurface) FillText(text string, x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := y - 1
	if x < 0 || x >= t.width || row < 0 || row >= t.height {
		return
	}
	for _, r := range text {
		c := &t.cells[row*t.width+x]
		c.glyph = r
		c.px = over(t.fill, c.px)
		return
	}
}

// Flush writes every cell to the screen and shows it.
func (t *TermSurface) Flush() error {
	if t.Screen == nil {
		return errors.New("terminal screen not initialised")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	bg := tcell.NewRGBColor(int32(Background.R), int32(Background.G), int32(Background.B))
	for row := 0; row < t.height; row++ {
		for col := 0; col < t.width; col++ {
			c := t.cells[row*t.width+col]
			glyph := c.glyph
			if glyph == 0 {
				glyph = ' '
			}
			fg := Composite(c.px, Background, 1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
				Background(bg)
			t.Screen.SetContent(col*termColumnWidth, row, glyph, nil, style)
		}
	}
	t.Screen.Show()
	return nil
}

func (t *TermSurface) cellAt(x, y int) termCell {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cells[y*t.width+x]
}

// over is the Porter-Duff source-over of two premultiplied colours.
func over(src, dst color.RGBA) color.RGBA {
	inv := 255 - uint32(src.A)
	f := func(s, d uint8) uint8 {
		return uint8(uint32(s) + (uint32(d)*inv+127)/255)
	}
	return color.RGBA{R: f(src.R, dst.R), G: f(src.G, dst.G), B: f(src.B, dst.B), A: f(src.A, dst.A)}
}
