package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yomitoru/yomitoru/internal/pipeline"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// translateHandler accepts a multipart image upload and runs the full
// translation pipeline. The rate limit window is consumed up front, so a
// request that later fails validation still counts against the client.
func (s *Server) translateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	clientID := clientIdentifier(r)
	if err := s.limiter.Check(clientID); err != nil {
		var cooldown *CooldownError
		if errors.As(err, &cooldown) {
			rateLimitHits.Inc()
			slog.Info("request rate limited", "client", clientID, "wait_seconds", cooldown.WaitSeconds)
			writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Please wait %d seconds before next upload", cooldown.WaitSeconds))
			return
		}
		writeError(w, http.StatusInternalServerError, "Translation failed")
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024) // headroom for multipart framing

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("File size exceeds %dMB limit", s.maxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if err := validateUpload(header, s.maxUploadMB); err != nil {
		var invalid *InvalidUploadError
		if errors.As(err, &invalid) {
			slog.Info("upload rejected", "client", clientID, "reason", invalid.Reason)
			writeError(w, http.StatusBadRequest, invalid.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "client", clientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Translation failed")
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	rubyMode := r.FormValue("rubyMode") == "true"
	mode := "default"
	if rubyMode {
		mode = "ruby"
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.pipeline.Run(ctx, pipeline.Request{
		Image:    data,
		MIMEType: header.Header.Get("Content-Type"),
		RubyMode: rubyMode,
	})
	translateDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		translateRequestsTotal.WithLabelValues(mode, "error").Inc()
		s.writePipelineError(w, clientID, err)
		return
	}

	translateRequestsTotal.WithLabelValues(mode, "success").Inc()
	writeJSON(w, http.StatusOK, result)
}

// writePipelineError maps pipeline failures to HTTP statuses. Content
// gates are client errors; external service failures surface only their
// sanitized user message.
func (s *Server) writePipelineError(w http.ResponseWriter, clientID string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoTextDetected):
		writeError(w, http.StatusBadRequest, "No text found in the image")
	case errors.Is(err, pipeline.ErrNoJapaneseText):
		writeError(w, http.StatusBadRequest, "No Japanese text found in the image")
	default:
		var external *pipeline.ExternalError
		if errors.As(err, &external) {
			slog.Error("translation failed",
				"client", clientID,
				"service", external.Service,
				"kind", external.Kind,
				"error", external.Err)
			writeError(w, http.StatusInternalServerError, external.UserMessage())
			return
		}
		slog.Error("translation failed", "client", clientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Translation failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
