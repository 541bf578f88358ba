package app

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	*render.Headless
	startErr error
	stopErr  error
	stopped  atomic.Bool
}

func (b *stubBackend) Start(ctx context.Context) error { return b.startErr }
func (b *stubBackend) Stop() error                     { b.stopped.Store(true); return b.stopErr }

type stubServer struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (s *stubServer) Start(ctx context.Context) error { s.started.Store(true); return s.startErr }
func (s *stubServer) Stop() error                     { s.stopped.Store(true); return s.stopErr }

func newTestApp(backend Backend, server *stubServer) *App {
	a := New(backend, server)
	a.Source = rand.New(rand.NewSource(1))
	a.Config = rain.DefaultConfig()
	a.Config.Interval = 5 * time.Millisecond
	return a
}

func runApp(ctx context.Context, a *App) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.Start(ctx) }()
	return errCh
}

func waitResult(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
		return nil
	}
}

func TestAppDrawsUntilExit(t *testing.T) {
	backend := &stubBackend{Headless: render.NewHeadless(nil, 140, 70)}
	server := &stubServer{}
	a := newTestApp(backend, server)

	assert.Equal(t, rain.Snapshot{}, a.Snapshot())

	errCh := runApp(context.Background(), a)
	require.Eventually(t, func() bool { return a.Snapshot().Frames >= 3 }, 2*time.Second, 5*time.Millisecond)

	snap := a.Snapshot()
	assert.Equal(t, 140, snap.Width)
	assert.Equal(t, 70, snap.Height)
	assert.Equal(t, 10, snap.Columns)
	assert.True(t, server.started.Load())

	a.Exit(nil)
	a.Exit(errors.New("ignored"))
	assert.NoError(t, waitResult(t, errCh))
	assert.True(t, server.stopped.Load())
	assert.True(t, backend.stopped.Load())
}

func TestAppResizeFollowsViewport(t *testing.T) {
	backend := &stubBackend{Headless: render.NewHeadless(nil, 140, 70)}
	a := newTestApp(backend, &stubServer{})

	a.Resize()

	errCh := runApp(context.Background(), a)
	require.Eventually(t, func() bool { return a.Snapshot().Columns == 10 }, 2*time.Second, 5*time.Millisecond)

	backend.View.Set(280, 70)
	a.Resize()
	assert.Equal(t, 20, a.Snapshot().Columns)
	assert.Equal(t, 280, a.Snapshot().Width)

	a.Exit(nil)
	assert.NoError(t, waitResult(t, errCh))
}

func TestAppStopsOnContextAndUntil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newTestApp(&stubBackend{Headless: render.NewHeadless(nil, 28, 28)}, &stubServer{})
	errCh := runApp(ctx, a)
	cancel()
	assert.NoError(t, waitResult(t, errCh))

	until := make(chan struct{})
	b := newTestApp(&stubBackend{Headless: render.NewHeadless(nil, 28, 28)}, &stubServer{})
	b.Until = until
	errCh = runApp(context.Background(), b)
	close(until)
	assert.NoError(t, waitResult(t, errCh))
}

func TestAppJoinsShutdownErrors(t *testing.T) {
	exitErr := errors.New("exit reason")
	webErr := errors.New("web stop")
	backendErr := errors.New("backend stop")

	backend := &stubBackend{Headless: render.NewHeadless(nil, 28, 28), stopErr: backendErr}
	a := newTestApp(backend, &stubServer{stopErr: webErr})
	errCh := runApp(context.Background(), a)
	a.Exit(exitErr)

	err := waitResult(t, errCh)
	require.Error(t, err)
	assert.ErrorIs(t, err, exitErr)
	assert.ErrorIs(t, err, webErr)
	assert.ErrorIs(t, err, backendErr)
}

func TestAppStartFailures(t *testing.T) {
	a := New(nil, nil)
	assert.Error(t, a.Start(context.Background()))

	startErr := errors.New("no device")
	backend := &stubBackend{Headless: render.NewHeadless(nil, 28, 28), startErr: startErr}
	b := newTestApp(backend, &stubServer{})
	assert.ErrorIs(t, b.Start(context.Background()), startErr)
	assert.False(t, backend.stopped.Load())

	webErr := errors.New("address in use")
	backend = &stubBackend{Headless: render.NewHeadless(nil, 28, 28)}
	c := newTestApp(backend, &stubServer{startErr: webErr})
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, webErr)
	assert.True(t, backend.stopped.Load())
}

func TestAppTerminalBackend(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	surface := render.NewTermSurface(screen)
	a := New(surface, nil)
	a.Source = rand.New(rand.NewSource(2))

	assert.Equal(t, 1, a.rainConfig().CellSize)

	errCh := runApp(context.Background(), a)
	require.Eventually(t, func() bool { return a.Snapshot().Frames >= 1 }, 2*time.Second, 10*time.Millisecond)

	w, h := screen.Size()
	snap := a.Snapshot()
	assert.Equal(t, w/2, snap.Columns)
	assert.Equal(t, h, snap.Height)

	a.Exit(nil)
	assert.NoError(t, waitResult(t, errCh))
}

func TestFileLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewFileLogger(&buf)
	l.Infof("rain", "resized to %dx%d", 140, 70)
	l.Errorf("web", "listen failed: %v", errors.New("boom"))
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "rain")
	assert.Contains(t, out, "resized to 140x70")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "listen failed: boom")
}
