package render

import (
	"image"
	"image/color"
)

// Composite blends a premultiplied overlay pixel onto an opaque backdrop and
// then mixes the result with the backdrop at the given layer opacity.
func Composite(px color.RGBA, backdrop color.RGBA, opacity float64) color.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	inv := 255 - uint32(px.A)
	over := func(p, b uint8) float64 {
		return float64(uint32(p) + (uint32(b)*inv+127)/255)
	}
	mix := func(p, b uint8) uint8 {
		v := float64(b)*(1-opacity) + over(p, b)*opacity
		if v > 255 {
			v = 255
		}
		return uint8(v + 0.5)
	}
	return color.RGBA{
		R: mix(px.R, backdrop.R),
		G: mix(px.G, backdrop.G),
		B: mix(px.B, backdrop.B),
		A: 0xFF,
	}
}

// CompositeImage flattens src onto backdrop into a new opaque image.
func CompositeImage(src *image.RGBA, backdrop color.RGBA, opacity float64) *image.RGBA {
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetRGBA(x, y, Composite(src.RGBAAt(x, y), backdrop, opacity))
		}
	}
	return out
}
