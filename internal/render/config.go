package render

import "image/color"

// Global render configuration for the overlay backdrop.
var (
	// Background is the page colour the overlay is composited onto.
	Background = color.RGBA{R: 0x0F, G: 0x14, B: 0x19, A: 0xFF} // #0f1419

	// Opacity of the rain layer over the backdrop when composited for display.
	OverlayOpacity = 0.15

	// FontDPI makes one font point equal one pixel, like a CSS "14px" font.
	FontDPI = 72.0
)
