package rain

import (
	"image/color"
	"slices"
	"time"
)

// GlyphSet is the character set a column picks from on every frame.
const GlyphSet = "01アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲン"

// Config holds the fixed geometry, palette and cadence of the effect.
type Config struct {
	// CellSize is both the font size and the column/row pitch, in surface units.
	CellSize int
	Interval time.Duration

	// Fade is painted over the whole surface each frame to dim old glyphs.
	Fade  color.NRGBA
	Glyph color.NRGBA

	// ResetThreshold: a column past the bottom restarts when Float64() exceeds it.
	ResetThreshold float64

	Glyphs []rune
}

// DefaultConfig returns the pixel-space configuration: 14px cells redrawn every
// 50ms, a rgba(15,20,25,0.05) fade and #28b4f0 glyphs.
func DefaultConfig() Config {
	return Config{
		CellSize:       14,
		Interval:       50 * time.Millisecond,
		Fade:           color.NRGBA{R: 15, G: 20, B: 25, A: 13},
		Glyph:          color.NRGBA{R: 0x28, G: 0xB4, B: 0xF0, A: 0xFF},
		ResetThreshold: 0.95,
		Glyphs:         []rune(GlyphSet),
	}
}

// TerminalConfig is DefaultConfig on a character grid, where one cell is one unit.
func TerminalConfig() Config {
	cfg := DefaultConfig()
	cfg.CellSize = 1
	return cfg
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CellSize <= 0 {
		c.CellSize = def.CellSize
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if len(c.Glyphs) == 0 {
		c.Glyphs = def.Glyphs
	} else {
		c.Glyphs = slices.Clone(c.Glyphs)
	}
	if c.Fade.A == 0 {
		c.Fade = def.Fade
	}
	if c.Glyph.A == 0 {
		c.Glyph = def.Glyph
	}
	if c.ResetThreshold <= 0 {
		c.ResetThreshold = def.ResetThreshold
	}
	return c
}
