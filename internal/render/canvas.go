package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is an offscreen RGBA drawing surface with canvas-style sticky
// fill colour and font size. It is safe for one writer and concurrent readers.
type Canvas struct {
	Fonts *FontLoader

	mu       sync.RWMutex
	img      *image.RGBA
	fill     *image.Uniform
	fontSize int
	face     font.Face
}

func NewCanvas(fonts *FontLoader) *Canvas {
	if fonts == nil {
		fonts = &FontLoader{}
	}
	return &Canvas{
		Fonts: fonts,
		img:   image.NewRGBA(image.Rect(0, 0, 0, 0)),
		fill:  image.NewUniform(color.Black),
	}
}

// SetSize reallocates the pixel buffer; the previous contents are dropped.
func (c *Canvas) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c.mu.Lock()
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.mu.Unlock()
}

func (c *Canvas) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) SetFillColor(col color.Color) {
	c.mu.Lock()
	c.fill = image.NewUniform(col)
	c.mu.Unlock()
}

func (c *Canvas) SetFontSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size == c.fontSize && c.face != nil {
		return
	}
	c.fontSize = size
	c.face = c.Fonts.Face(size)
}

// FillRect composites the fill colour over the rectangle, honouring alpha.
func (c *Canvas) FillRect(x, y, width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rect := image.Rect(x, y, x+width, y+height).Intersect(c.img.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(c.img, rect, c.fill, image.Point{}, draw.Over)
}

// FillText draws text starting at x with its alphabetic baseline at y.
func (c *Canvas) FillText(text string, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.face == nil {
		c.face = c.Fonts.Face(c.fontSize)
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  c.fill,
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

// withPixels runs fn with read access to the live buffer.
func (c *Canvas) withPixels(fn func(img *image.RGBA)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.img)
}
