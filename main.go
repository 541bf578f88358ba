package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rook-computer/matrixrain/internal/app"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/system"
	"github.com/rook-computer/matrixrain/internal/web"
)

func main() {
	defaults, err := config.FromEnv()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	// Flags
	backend := flag.String("backend", string(defaults.Backend), "where to draw: term | fb | gif; also configurable via "+config.EnvBackend)
	debug := flag.Bool("debug", false, "enable debug logging to "+defaults.DebugLog)
	stdioLog := flag.String("stdio-log", defaults.StdIOLog, "redirect stdout+stderr (including panics) to this file; also configurable via "+config.EnvStdIOLog)
	fbDevice := flag.String("fb-device", defaults.FBDevice, "framebuffer device for -backend fb; also configurable via "+config.EnvFBDevice)
	out := flag.String("out", defaults.Output, "gif file written by -backend gif; also configurable via "+config.EnvOutput)
	frames := flag.Int("frames", defaults.Frames, "frames recorded by -backend gif; also configurable via "+config.EnvFrames)
	size := flag.String("size", fmt.Sprintf("%dx%d", defaults.Width, defaults.Height), "canvas size WIDTHxHEIGHT for -backend gif; also configurable via "+config.EnvSize)
	preview := flag.String("preview", defaults.PreviewAddr, "serve the canvas over HTTP on this address (fb, gif); also configurable via "+config.EnvListen)
	flag.Parse()

	cfg := defaults
	cfg.Backend = config.Backend(strings.ToLower(strings.TrimSpace(*backend)))
	cfg.Debug = *debug
	cfg.StdIOLog = *stdioLog
	cfg.FBDevice = *fbDevice
	cfg.Output = *out
	cfg.Frames = *frames
	cfg.PreviewAddr = *preview
	if cfg.Width, cfg.Height, err = config.ParseSize(*size); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	// Best-effort: keep panics diagnosable when the console is in graphics mode.
	if cfg.StdIOLog != "" {
		if err := system.RedirectStdIO(cfg.StdIOLog); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if cfg.Debug {
		f, err := os.OpenFile(cfg.DebugLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			fileLogger := app.NewFileLogger(f)
			defer func() { _ = fileLogger.Sync(); _ = f.Close() }()
			logger = fileLogger
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Errorf("main", "exit: %v", err)
		fmt.Println("matrixrain error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger app.Logger) error {
	fonts := &render.FontLoader{Logger: logger}

	var (
		backend  app.Backend
		canvas   *render.Canvas
		recorder *render.Recorder
	)
	switch cfg.Backend {
	case config.BackendTerminal:
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		backend = render.NewTermSurface(screen)
	case config.BackendFramebuffer:
		fb := render.NewFBRenderer(cfg.FBDevice, fonts)
		backend, canvas = fb, fb.Canvas
	case config.BackendGIF:
		recorder = render.NewRecorder(fonts, cfg.Width, cfg.Height, cfg.Frames, rain.DefaultConfig().Interval)
		backend, canvas = recorder, recorder.Canvas
	}

	a := app.New(backend, nil)
	a.Logger = logger
	if recorder != nil {
		a.Until = recorder.Done()
	}
	if cfg.PreviewAddr != "" && canvas != nil {
		server := web.NewHTTPServer(web.ServerConfig{ListenAddr: cfg.PreviewAddr}, web.APIV1Deps{
			Rain:   a,
			Frames: canvas,
		})
		server.Logger = logger
		server.ShutdownTimeout = cfg.ShutdownTimeout
		a.Web = server
	}

	if err := a.Start(ctx); err != nil {
		return err
	}

	if recorder != nil {
		if err := writeGIF(cfg.Output, recorder); err != nil {
			return err
		}
		fmt.Printf("wrote %d frames to %s\n", recorder.Len(), cfg.Output)
	}
	return nil
}

func writeGIF(path string, recorder *render.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := recorder.Encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
