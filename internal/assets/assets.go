package assets

import (
	"embed"
	"io/fs"

	"golang.org/x/image/font/gofont/gomono"
)

// MonoTTF is the monospace face glyphs are drawn with.
var MonoTTF = gomono.TTF

//go:embed web
var webFS embed.FS

// WebUI is an embedded filesystem rooted at internal/assets/web.
// It contains the preview page that hosts the rain overlay.
var WebUI fs.FS

func init() {
	// Embed paths include the leading directory; strip it for serving at '/'.
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	WebUI = sub
}
