package render

import "context"

// Headless is a Canvas whose viewport is set from outside, for hosts that
// render off-screen (web preview, GIF capture).
type Headless struct {
	*Canvas
	View *Viewport
}

func NewHeadless(fonts *FontLoader, width, height int) *Headless {
	return &Headless{Canvas: NewCanvas(fonts), View: NewViewport(width, height)}
}

func (h *Headless) Start(ctx context.Context) error { return nil }
func (h *Headless) Stop() error                     { return nil }

func (h *Headless) Viewport() (int, int) { return h.View.Size() }
