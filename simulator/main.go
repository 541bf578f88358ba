package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/matrixrain/internal/app"
	"github.com/rook-computer/matrixrain/internal/config"
	"github.com/rook-computer/matrixrain/internal/render"
	"github.com/rook-computer/matrixrain/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	size := flag.String("size", "1280x720", "initial viewport WIDTHxHEIGHT until the page reports its own")
	debug := flag.Bool("debug", false, "log to stdout")
	flag.Parse()

	width, height, err := config.ParseSize(*size)
	if err != nil {
		fmt.Println("size error:", err)
		os.Exit(2)
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		fileLogger := app.NewFileLogger(os.Stdout)
		defer func() { _ = fileLogger.Sync() }()
		logger = fileLogger
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headless := render.NewHeadless(&render.FontLoader{Logger: logger}, width, height)
	a := app.New(headless, nil)
	a.Logger = logger

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode}, web.APIV1Deps{
		Rain:       a,
		Frames:     headless,
		Viewport:   headless.View,
		PreviewURL: "http://" + trimLeadingColon(*listenAddr) + "/",
	})
	server.StaticDir = *staticDir
	server.Logger = logger
	a.Web = server

	fmt.Println("Matrix rain preview on http://" + trimLeadingColon(*listenAddr) + "/")
	fmt.Println("API: http://" + trimLeadingColon(*listenAddr) + "/api/v1/")

	if err := a.Start(processCtx); err != nil {
		fmt.Println("preview error:", err)
		stop()
		os.Exit(1)
	}
}

func trimLeadingColon(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}
