package render

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
)

const DefaultFBDevice = "/dev/fb0"

// FBRenderer draws the rain on an offscreen Canvas and blits each finished
// frame to the Linux framebuffer. The framebuffer bounds are the viewport.
type FBRenderer struct {
	*Canvas

	DevicePath string
	// Opacity of the rain over Background; 0 means fully opaque.
	Opacity float64
	Logger  interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	fbDev   *fb.Device
	running atomic.Bool
}

func NewFBRenderer(devicePath string, fonts *FontLoader) *FBRenderer {
	if devicePath == "" {
		devicePath = DefaultFBDevice
	}
	return &FBRenderer{Canvas: NewCanvas(fonts), DevicePath: devicePath}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.DevicePath)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", r.DevicePath, bounds.Dx(), bounds.Dy())
	}
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// Viewport reports the framebuffer size, or zero before Start.
func (r *FBRenderer) Viewport() (int, int) {
	if r.fbDev == nil {
		return 0, 0
	}
	b := r.fbDev.Bounds()
	return b.Dx(), b.Dy()
}

// Flush presents the canvas on the framebuffer.
func (r *FBRenderer) Flush() error {
	if !r.running.Load() || r.fbDev == nil {
		return errors.New("framebuffer not open")
	}
	opacity := r.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	r.withPixels(func(img *image.RGBA) {
		blit(r.fbDev, img, opacity)
	})
	return nil
}

// blit copies canvas onto dst via nearest-neighbour sampling, composited
// over Background.
func blit(dst draw.Image, canvas *image.RGBA, opacity float64) {
	bounds := dst.Bounds()
	dstWidth, dstHeight := bounds.Dx(), bounds.Dy()
	src := canvas.Bounds()
	if src.Empty() {
		draw.Draw(dst, bounds, image.NewUniform(Background), image.Point{}, draw.Src)
		return
	}
	for y := 0; y < dstHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/dstHeight
		for x := 0; x < dstWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/dstWidth
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, Composite(canvas.RGBAAt(sx, sy), Background, opacity))
		}
	}
}
