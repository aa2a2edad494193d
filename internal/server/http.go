package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
)

// handleIndex serves the plain-text liveness banner on the root path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	logging.LogConnection(r.RemoteAddr, "http_index")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Nightstand online"))
}

// handleParams accepts a one-shot color command over HTTP POST. Requests
// with a declared Content-Length are rejected before the body is read when
// the declared size exceeds the payload budget; chunked bodies are consumed
// incrementally so an oversized stream is abandoned mid-read.
func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	logging.LogConnection(r.RemoteAddr, "http_params")

	var cmd command.Command
	var err error
	if r.ContentLength >= 0 {
		if int(r.ContentLength) > s.validator.MaxPayload {
			writeCommandError(w, r.RemoteAddr, command.ErrPayloadTooLarge)
			return
		}
		body := make([]byte, r.ContentLength)
		if _, readErr := io.ReadFull(r.Body, body); readErr != nil {
			writeJSONError(w, http.StatusBadRequest, "body_read_failed")
			return
		}
		cmd, err = s.validator.Decode(body)
	} else {
		cmd, err = s.validator.DecodeStream(r.Body)
	}
	if err != nil {
		writeCommandError(w, r.RemoteAddr, err)
		return
	}

	if err := s.bus.Send(cmd); err != nil {
		if errors.Is(err, pixelbus.ErrClosed) {
			writeJSONError(w, http.StatusServiceUnavailable, "pixel_queue_unavailable")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	logging.Info("Applied color command",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("transport", "http"),
		zap.Int("pixels", len(cmd)),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealth reports process health for probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.start).Seconds()),
		"strip_pixels":   s.config.StripPixels,
		"sessions":       s.ActiveSessions(),
	})
}

// writeCommandError maps validator errors onto HTTP statuses and the wire
// error codes shared with the WebSocket surface.
func writeCommandError(w http.ResponseWriter, remoteAddr string, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, command.ErrPayloadTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, command.ErrInvalidEncoding):
		status, code = http.StatusBadRequest, "invalid_utf8"
	case errors.Is(err, command.ErrMalformedPayload):
		status, code = http.StatusBadRequest, "invalid_payload"
	default:
		status, code = http.StatusBadRequest, "invalid_payload"
	}

	logging.Warn("Rejected color command",
		zap.String("remote_addr", remoteAddr),
		zap.String("code", code),
		zap.Error(err),
	)
	writeJSONError(w, status, code)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
