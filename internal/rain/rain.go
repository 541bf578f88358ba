package rain

import (
	"context"
	"image/color"
	"math/rand"
	"slices"
	"sync"
	"time"
)

// Surface is the drawing target the rain paints into.
// It mirrors a 2D canvas context: the fill colour and font size are sticky
// state consumed by the following FillRect/FillText calls.
type Surface interface {
	// SetSize reassigns the pixel dimensions and clears the contents.
	SetSize(width, height int)
	Size() (width, height int)

	SetFillColor(c color.Color)
	SetFontSize(size int)

	FillRect(x, y, width, height int)
	// FillText draws text with its baseline at y.
	FillText(text string, x, y int)
}

// Flusher is implemented by surfaces that must present a finished frame
// (framebuffer blit, terminal show, GIF capture).
type Flusher interface {
	Flush() error
}

// Viewport reports the current size of the area the rain should cover.
type Viewport interface {
	Size() (width, height int)
}

// ViewportFunc adapts a function to a Viewport.
type ViewportFunc func() (width, height int)

func (f ViewportFunc) Size() (int, int) { return f() }

// Source supplies randomness for glyph choice, new columns and restarts.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// NewSource returns a Source seeded from the current time.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Logger receives resize and frame errors, tagged with a component name.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Snapshot is a point-in-time copy of the rain state.
type Snapshot struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Columns int    `json:"columns"`
	Frames  uint64 `json:"frames"`
	Drops   []int  `json:"drops"`
}

// Rain owns one surface and one drop position per column.
// Resize and DrawFrame may be called from any goroutine; they never overlap.
type Rain struct {
	Logger Logger

	cfg      Config
	surface  Surface
	viewport Viewport
	rnd      Source

	mu     sync.Mutex
	width  int
	height int
	drops  []int
	frames uint64
}

// New builds a Rain over surface and sizes it to the viewport.
// A nil source falls back to NewSource.
func New(surface Surface, viewport Viewport, source Source, cfg Config) *Rain {
	if source == nil {
		source = NewSource()
	}
	r := &Rain{
		cfg:      cfg.withDefaults(),
		surface:  surface,
		viewport: viewport,
		rnd:      source,
	}
	r.Resize()
	return r
}

// Config returns the effective configuration.
func (r *Rain) Config() Config {
	cfg := r.cfg
	cfg.Glyphs = slices.Clone(cfg.Glyphs)
	return cfg
}

// Resize re-reads the viewport, resizes (and thereby clears) the surface and
// fits the drop positions to the new column count. Surviving columns keep
// their position; new columns start at a random row inside the viewport.
func (r *Rain) Resize() {
	width, height := r.viewport.Size()
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.surface.SetSize(width, height)
	r.width, r.height = width, height

	cell := r.cfg.CellSize
	columns := width / cell
	rows := height / cell
	old := len(r.drops)
	switch {
	case columns < old:
		r.drops = r.drops[:columns]
	case columns > old:
		for i := old; i < columns; i++ {
			start := 0
			if rows > 0 {
				start = r.rnd.Intn(rows)
			}
			r.drops = append(r.drops, start)
		}
	}

	if r.Logger != nil {
		r.Logger.Infof("rain", "resize %dx%d, columns %d -> %d", width, height, old, columns)
	}
}

// DrawFrame fades the surface and draws one random glyph per column.
// The returned error comes from presenting the frame, if the surface flushes.
func (r *Rain) DrawFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cell := r.cfg.CellSize

	r.surface.SetFillColor(r.cfg.Fade)
	r.surface.FillRect(0, 0, r.width, r.height)

	r.surface.SetFillColor(r.cfg.Glyph)
	r.surface.SetFontSize(cell)

	glyphs := r.cfg.Glyphs
	for i, drop := range r.drops {
		glyph := glyphs[r.rnd.Intn(len(glyphs))]
		r.surface.FillText(string(glyph), i*cell, drop*cell)

		// Columns restart at random once past the bottom so they stay staggered.
		if drop*cell > r.height && r.rnd.Float64() > r.cfg.ResetThreshold {
			r.drops[i] = 0
		}
		r.drops[i]++
	}
	r.frames++

	if f, ok := r.surface.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Columns returns the current column count.
func (r *Rain) Columns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drops)
}

// Snapshot copies the current size, drop positions and frame count.
func (r *Rain) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	drops := make([]int, len(r.drops))
	copy(drops, r.drops)
	return Snapshot{
		Width:   r.width,
		Height:  r.height,
		Columns: len(r.drops),
		Frames:  r.frames,
		Drops:   drops,
	}
}

// Loop is the handle of a running draw timer.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start draws a frame every Config.Interval until ctx is done or the
// returned Loop is stopped.
func (r *Rain) Start(ctx context.Context) *Loop {
	loopCtx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if err := r.DrawFrame(); err != nil && r.Logger != nil {
					r.Logger.Errorf("rain", "frame present failed: %v", err)
				}
			}
		}
	}()
	return l
}

// Stop cancels the timer and waits for an in-flight frame to finish.
// It is safe to call more than once.
func (l *Loop) Stop() {
	l.cancel()
	<-l.done
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }
