package render

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"sync"
	"time"
)

// Recorder is a Headless canvas that captures every flushed frame into an
// animated GIF. Done is closed once Limit frames have been captured.
type Recorder struct {
	*Headless

	Limit int
	Delay time.Duration
	// Opacity of the rain over Background; 0 means fully opaque.
	Opacity float64

	mu     sync.Mutex
	frames []*image.Paletted
	done   chan struct{}
	closed bool
}

func NewRecorder(fonts *FontLoader, width, height, limit int, delay time.Duration) *Recorder {
	return &Recorder{
		Headless: NewHeadless(fonts, width, height),
		Limit:    limit,
		Delay:    delay,
		done:     make(chan struct{}),
	}
}

// Flush captures the current frame; frames past Limit are ignored.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	opacity := r.Opacity
	if opacity <= 0 {
		opacity = 1
	}
	var flat *image.RGBA
	r.withPixels(func(img *image.RGBA) {
		flat = CompositeImage(img, Background, opacity)
	})
	frame := image.NewPaletted(flat.Bounds(), palette.Plan9)
	draw.Draw(frame, frame.Bounds(), flat, flat.Bounds().Min, draw.Src)
	r.frames = append(r.frames, frame)

	if r.Limit > 0 && len(r.frames) >= r.Limit {
		r.closed = true
		close(r.done)
	}
	return nil
}

func (r *Recorder) Done() <-chan struct{} { return r.done }

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Encode writes the captured frames as a looping GIF.
func (r *Recorder) Encode(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	delay := int(r.Delay / (10 * time.Millisecond))
	if delay <= 0 {
		delay = 1
	}
	anim := &gif.GIF{}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}
