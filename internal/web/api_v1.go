package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rook-computer/matrixrain/internal/rain"
	"github.com/rook-computer/matrixrain/internal/render"
)

// maxViewportSide bounds reported viewport sizes so a client cannot make the
// server allocate an arbitrarily large canvas.
const maxViewportSide = 8192

const streamBoundary = "matrixrain-frame"

// RainController is the part of the rain the API reads and resizes.
type RainController interface {
	Snapshot() rain.Snapshot
	Resize()
}

// FrameSource renders the current frame.
type FrameSource interface {
	EncodePNG(w io.Writer) error
}

// ViewportSetter records the size reported by the page.
type ViewportSetter interface {
	Set(width, height int) bool
}

type APIV1Deps struct {
	Rain     RainController
	Frames   FrameSource
	Viewport ViewportSetter

	// FrameInterval paces /stream; defaults to the rain interval.
	FrameInterval time.Duration
	// Opacity is what the page applies to the overlay layer.
	Opacity float64
	// PreviewURL is encoded by /qr.png when no url query is given.
	PreviewURL string
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	if d.FrameInterval <= 0 {
		d.FrameInterval = rain.DefaultConfig().Interval
	}
	if d.Opacity <= 0 {
		d.Opacity = render.OverlayOpacity
	}
	return d
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type statusResponse struct {
	rain.Snapshot
	Opacity  float64 `json:"opacity"`
	Interval int64   `json:"intervalMs"`
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, deps) })
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) { handleStream(w, r, deps) })
	mux.HandleFunc("/viewport", func(w http.ResponseWriter, r *http.Request) { handleViewport(w, r, deps) })
	mux.HandleFunc("/qr.png", func(w http.ResponseWriter, r *http.Request) { handleQRCode(w, r, deps) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Rain == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "rain not configured")
		return
	}
	writeJSON(w, http.StatusOK, newStatus(deps))
}

func newStatus(deps APIV1Deps) statusResponse {
	return statusResponse{
		Snapshot: deps.Rain.Snapshot(),
		Opacity:  deps.Opacity,
		Interval: deps.FrameInterval.Milliseconds(),
	}
}

func handleFrame(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Frames == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "frames not configured")
		return
	}
	var buf bytes.Buffer
	if err := deps.Frames.EncodePNG(&buf); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleStream pushes a PNG per frame interval as multipart/x-mixed-replace
// until the client goes away. ?frames=N stops after N parts.
func handleStream(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Frames == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "frames not configured")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("frames"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeAPIError(w, http.StatusBadRequest, "invalid_frames", "frames must be a non-negative integer")
			return
		}
		limit = n
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(deps.FrameInterval)
	defer ticker.Stop()

	var buf bytes.Buffer
	for sent := 0; limit == 0 || sent < limit; sent++ {
		buf.Reset()
		if err := deps.Frames.EncodePNG(&buf); err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/png\r\nContent-Length: %d\r\n\r\n", streamBoundary, buf.Len()); err != nil {
			return
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// handleViewport is the page's resize notification: record the size and
// resize the rain immediately.
func handleViewport(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if deps.Rain == nil || deps.Viewport == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "viewport not configured")
		return
	}

	var req viewportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > maxViewportSide || req.Height > maxViewportSide {
		writeAPIError(w, http.StatusBadRequest, "invalid_viewport", fmt.Sprintf("width and height must be in 1..%d", maxViewportSide))
		return
	}

	deps.Viewport.Set(req.Width, req.Height)
	deps.Rain.Resize()
	writeJSON(w, http.StatusOK, newStatus(deps))
}

func handleQRCode(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		url = deps.PreviewURL
	}
	if url == "" {
		writeAPIError(w, http.StatusNotFound, "no_preview_url", "no preview url configured")
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 2048 {
			writeAPIError(w, http.StatusBadRequest, "invalid_size", "size must be in 1..2048")
			return
		}
		size = n
	}

	data, err := render.PreviewQRCodePNG(url, size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
