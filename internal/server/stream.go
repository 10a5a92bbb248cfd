package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/arcade/internal/app"
)

// streamInterval paces the MJPEG stream at about 15 FPS.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the camera frames the frame loop encodes as MJPEG.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a new StreamHandler for a's camera.
func NewStreamHandler(a *app.App) *StreamHandler {
	return &StreamHandler{app: a}
}

// ServeHTTP streams MJPEG frames to connected clients. Frames are only
// written when a new one has been encoded since the last write.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stop := h.app.WatchStream()
	defer stop()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpg, seq := h.app.LatestFrame()
		if seq == last || len(jpg) == 0 {
			continue
		}
		last = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpg))
		if _, err := w.Write(jpg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
