// Package config resolves the command-line and environment settings of the
// matrixrain binary. The rain itself has no tunables; these only choose where
// and how it is shown.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvBackend  = "MATRIXRAIN_BACKEND"
	EnvStdIOLog = "MATRIXRAIN_STDIO_LOG"
	EnvFBDevice = "MATRIXRAIN_FB_DEVICE"
	EnvOutput   = "MATRIXRAIN_OUT"
	EnvFrames   = "MATRIXRAIN_FRAMES"
	EnvSize     = "MATRIXRAIN_SIZE"
	EnvListen   = "MATRIXRAIN_PREVIEW"
)

type Backend string

const (
	BackendTerminal    Backend = "term"
	BackendFramebuffer Backend = "fb"
	BackendGIF         Backend = "gif"
)

// Backends lists the accepted -backend values.
var Backends = []Backend{BackendTerminal, BackendFramebuffer, BackendGIF}

// Config is the resolved runtime configuration.
type Config struct {
	Backend  Backend
	Debug    bool
	DebugLog string
	StdIOLog string

	FBDevice string

	// Output, Frames and Width/Height drive the gif backend.
	Output string
	Frames int
	Width  int
	Height int

	// PreviewAddr, when set, serves the canvas-backed frames over HTTP.
	PreviewAddr string

	ShutdownTimeout time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Backend:         BackendTerminal,
		DebugLog:        "./matrixrain-debug.log",
		FBDevice:        "/dev/fb0",
		Output:          "matrixrain.gif",
		Frames:          100,
		Width:           640,
		Height:          360,
		ShutdownTimeout: 5 * time.Second,
	}
}

// FromEnv overlays MATRIXRAIN_* variables on Default.
func FromEnv() (Config, error) {
	cfg := Default()
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(v)))
	}
	cfg.StdIOLog = os.Getenv(EnvStdIOLog)
	if v := os.Getenv(EnvFBDevice); v != "" {
		cfg.FBDevice = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv(EnvFrames); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be an integer (got %q): %w", EnvFrames, v, err)
		}
		cfg.Frames = n
	}
	if v := os.Getenv(EnvSize); v != "" {
		w, h, err := ParseSize(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSize, err)
		}
		cfg.Width, cfg.Height = w, h
	}
	cfg.PreviewAddr = os.Getenv(EnvListen)
	return cfg, nil
}

// ParseSize parses "WIDTHxHEIGHT".
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad width: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad height: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return w, h, nil
}

// Validate reports the first setting that cannot work for the chosen backend.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendTerminal:
	case BackendFramebuffer:
		if c.FBDevice == "" {
			return errors.New("fb backend needs a framebuffer device")
		}
	case BackendGIF:
		if c.Output == "" {
			return errors.New("gif backend needs an output path")
		}
		if c.Frames <= 0 {
			return fmt.Errorf("gif backend needs a positive frame count (got %d)", c.Frames)
		}
		if c.Width <= 0 || c.Height <= 0 {
			return fmt.Errorf("gif backend needs a positive size (got %dx%d)", c.Width, c.Height)
		}
	default:
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, Backends)
	}
	if c.PreviewAddr != "" && c.Backend == BackendTerminal {
		return errors.New("preview is only available for canvas backends (fb, gif)")
	}
	return nil
}
