package render

import "sync"

// Viewport is a concurrency-safe size for hosts that are told their
// dimensions rather than measuring them.
type Viewport struct {
	mu     sync.RWMutex
	width  int
	height int
}

func NewViewport(width, height int) *Viewport {
	return &Viewport{width: width, height: height}
}

func (v *Viewport) Size() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Set updates the size and reports whether it changed.
func (v *Viewport) Set(width, height int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.width == width && v.height == height {
		return false
	}
	v.width, v.height = width, height
	return true
}
