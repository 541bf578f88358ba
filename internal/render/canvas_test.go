package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var glyphColor = color.NRGBA{R: 0x28, G: 0xB4, B: 0xF0, A: 0xFF}
var fadeColor = color.NRGBA{R: 15, G: 20, B: 25, A: 13}

func anyInk(img *image.RGBA, rect image.Rectangle) bool {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				return true
			}
		}
	}
	return false
}

func TestCanvasSetSizeClears(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(140, 100)
	w, h := c.Size()
	assert.Equal(t, 140, w)
	assert.Equal(t, 100, h)

	c.SetFillColor(glyphColor)
	c.FillRect(0, 0, 140, 100)
	require.True(t, anyInk(c.Image(), image.Rect(0, 0, 140, 100)))

	c.SetSize(140, 100)
	assert.False(t, anyInk(c.Image(), image.Rect(0, 0, 140, 100)))

	c.SetSize(-5, -5)
	w, h = c.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestCanvasFillRectIsTranslucent(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(4, 4)
	c.SetFillColor(fadeColor)

	c.FillRect(0, 0, 4, 4)
	first := c.Image().RGBAAt(1, 1).A
	assert.Equal(t, uint8(13), first)

	prev := first
	for i := 0; i < 50; i++ {
		c.FillRect(0, 0, 4, 4)
		a := c.Image().RGBAAt(1, 1).A
		assert.GreaterOrEqual(t, a, prev)
		prev = a
	}
	assert.Greater(t, prev, uint8(200))
}

func TestCanvasFillRectClipsToBounds(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(10, 10)
	c.SetFillColor(glyphColor)
	c.FillRect(-5, -5, 8, 8)
	img := c.Image()
	assert.Equal(t, uint8(0xFF), img.RGBAAt(2, 2).A)
	assert.Equal(t, uint8(0), img.RGBAAt(3, 3).A)

	c.FillRect(20, 20, 5, 5)
}

func TestCanvasFadeDimsEarlierPixels(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(2, 2)
	c.SetFillColor(glyphColor)
	c.FillRect(0, 0, 1, 1)
	start := c.Image().RGBAAt(0, 0)
	require.Equal(t, uint8(0xF0), start.B)

	c.SetFillColor(fadeColor)
	for i := 0; i < 20; i++ {
		c.FillRect(0, 0, 2, 2)
	}
	faded := c.Image().RGBAAt(0, 0)
	assert.Less(t, faded.B, start.B)
	assert.Greater(t, faded.B, uint8(25))
}

func TestCanvasFillTextUsesBaseline(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(140, 100)
	c.SetFillColor(glyphColor)
	c.SetFontSize(14)

	c.FillText("0", 14, 28)
	img := c.Image()
	assert.True(t, anyInk(img, image.Rect(14, 14, 28, 28)), "glyph should sit above its baseline")
	assert.False(t, anyInk(img, image.Rect(0, 0, 140, 12)))
	assert.False(t, anyInk(img, image.Rect(0, 30, 140, 100)))

	// At baseline zero only the descender overshoot can reach the canvas.
	c.SetSize(140, 100)
	c.FillText("0", 0, 0)
	assert.False(t, anyInk(c.Image(), image.Rect(0, 2, 140, 100)))
}

func TestCanvasDrawsEveryGlyphDistinctly(t *testing.T) {
	fonts := &FontLoader{}
	seen := make(map[string]rune)
	for _, g := range rain.GlyphSet {
		c := NewCanvas(fonts)
		c.SetSize(28, 28)
		c.SetFillColor(glyphColor)
		c.SetFontSize(14)
		c.FillText(string(g), 7, 20)

		img := c.Image()
		require.True(t, anyInk(img, img.Bounds()), "glyph %q left no ink", g)
		key := string(img.Pix)
		if prev, dup := seen[key]; dup {
			t.Errorf("glyph %q renders the same pixels as %q", g, prev)
		}
		seen[key] = g
	}
	assert.Len(t, seen, len([]rune(rain.GlyphSet)))
}

func TestCanvasKatakanaStaysInItsCell(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(42, 42)
	c.SetFillColor(glyphColor)
	c.SetFontSize(14)
	c.FillText("ア", 14, 28)

	img := c.Image()
	assert.True(t, anyInk(img, image.Rect(14, 14, 28, 28)))
	assert.False(t, anyInk(img, image.Rect(0, 0, 42, 14)))
	assert.False(t, anyInk(img, image.Rect(0, 0, 14, 42)))
	assert.False(t, anyInk(img, image.Rect(28, 0, 42, 42)))
}

func TestCanvasImageIsACopy(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(2, 2)
	img := c.Image()
	img.SetRGBA(0, 0, color.RGBA{R: 1, A: 1})
	assert.Equal(t, uint8(0), c.Image().RGBAAt(0, 0).A)
}

func TestCanvasEncodePNG(t *testing.T) {
	c := NewCanvas(nil)
	c.SetSize(30, 20)
	c.SetFillColor(glyphColor)
	c.FillRect(0, 0, 30, 20)

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())
}
