package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/system"
	"github.com/rook-computer/matrixrain/internal/web"
)

// Backend is a drawing surface with a lifecycle and a notion of how large
// the area it covers currently is.
type Backend interface {
	rain.Surface
	Start(ctx context.Context) error
	Stop() error
	Viewport() (int, int)
}

// watcher is implemented by backends that deliver their own resize and quit
// events (the terminal).
type watcher interface {
	Watch(ctx context.Context, onResize func(), onExit func())
}

type App struct {
	Backend Backend
	Web     web.Server
	Logger  Logger
	// Config overrides the rain settings; zero picks the backend's default.
	Config rain.Config
	Source rain.Source
	// Until ends the session once closed, e.g. when a recorder is full.
	Until <-chan struct{}

	rain atomic.Pointer[rain.Rain]

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(backend Backend, webServer web.Server) *App {
	if webServer == nil {
		webServer = &web.NoopServer{}
	}
	return &App{Backend: backend, Web: webServer, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running. Only the first call counts.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Snapshot reports the running rain, or a zero snapshot before Start.
func (app *App) Snapshot() rain.Snapshot {
	if r := app.rain.Load(); r != nil {
		return r.Snapshot()
	}
	return rain.Snapshot{}
}

// Resize re-reads the viewport of the running rain.
func (app *App) Resize() {
	if r := app.rain.Load(); r != nil {
		r.Resize()
	}
}

func (app *App) rainConfig() rain.Config {
	if app.Config.CellSize > 0 {
		return app.Config
	}
	if _, ok := app.Backend.(*render.TermSurface); ok {
		return rain.TerminalConfig()
	}
	return rain.DefaultConfig()
}

// Start runs the session and blocks until ctx is done, Until is closed or
// Exit is called. The returned error joins the exit reason with any
// shutdown failures.
func (app *App) Start(ctx context.Context) error {
	if app.Backend == nil {
		return errors.New("no backend configured")
	}
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)

	fb, isFB := app.Backend.(*render.FBRenderer)
	if isFB {
		fb.Logger = app.Logger
		if fb.Fonts != nil && fb.Fonts.Logger == nil {
			fb.Fonts.Logger = app.Logger
		}
	}

	if err := app.Backend.Start(ctx); err != nil {
		app.Logger.Errorf("app", "backend start error: %v", err)
		return err
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	source := app.Source
	if source == nil {
		source = rain.NewSource()
	}
	r := rain.New(app.Backend, rain.ViewportFunc(app.Backend.Viewport), source, app.rainConfig())
	r.Logger = app.Logger
	app.rain.Store(r)
	width, height := app.Backend.Size()
	app.Logger.Infof("app", "rain ready: %dx%d, %d columns", width, height, r.Columns())

	restoreConsole := func() {}
	if isFB {
		// The framebuffer owns the console; hide the text cursor and arm
		// the hardware exit keys.
		restoreConsole = system.EnterGraphicsConsole(app.Logger)
		system.StartExitOnKey(sessionCtx, app.Logger, func() { app.Exit(nil) }, system.KeyF4, system.KeyEsc)
	}

	var wg sync.WaitGroup
	if w, ok := app.Backend.(watcher); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Watch(sessionCtx, r.Resize, func() { app.Exit(nil) })
		}()
	}

	var result *multierror.Error
	loop := r.Start(sessionCtx)
	if err := app.Web.Start(sessionCtx); err != nil {
		app.Logger.Errorf("app", "web server start error: %v", err)
		result = multierror.Append(result, err)
	} else {
		select {
		case <-ctx.Done():
			app.Logger.Infof("app", "context done: %v", ctx.Err())
		case <-app.Until:
			app.Logger.Infof("app", "session complete")
		case err := <-app.exitCh:
			app.Logger.Infof("app", "exit requested")
			result = multierror.Append(result, err)
		}
	}

	cancel()
	loop.Stop()
	if err := app.Web.Stop(); err != nil {
		result = multierror.Append(result, err)
	}
	restoreConsole()
	if err := app.Backend.Stop(); err != nil {
		result = multierror.Append(result, err)
	}
	wg.Wait()

	snap := r.Snapshot()
	app.Logger.Infof("app", "stopped after %d frames", snap.Frames)
	return result.ErrorOrNil()
}
