package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yomitoru/yomitoru/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketTranslateRequest is a translation request sent over WebSocket.
// Image bytes are carried base64-encoded in the JSON payload.
type WebSocketTranslateRequest struct {
	Image    []byte `json:"image"`
	MIMEType string `json:"mimeType,omitempty"`
	RubyMode bool   `json:"rubyMode,omitempty"`
}

// WebSocketTranslateResponse is a frame sent back to the client while a
// request is processed.
type WebSocketTranslateResponse struct {
	Type      string           `json:"type"`
	Status    string           `json:"status"` // "processing", "completed", "error"
	Stage     string           `json:"stage,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// websocketHandler handles WebSocket connections for translation with
// live stage progress.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn, clientIdentifier(r))
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn, clientID string) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, clientID, data)
		}
	}
}

// handleWebSocketMessage runs one translation request and streams stage
// progress. The same rate limit and upload gates apply as on the HTTP
// endpoint.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, clientID string, data []byte) {
	var req WebSocketTranslateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	if err := s.limiter.Check(clientID); err != nil {
		var cooldown *CooldownError
		if errors.As(err, &cooldown) {
			rateLimitHits.Inc()
			s.sendWebSocketError(conn, "rate_limited",
				fmt.Sprintf("Please wait %d seconds before next upload", cooldown.WaitSeconds))
			return
		}
		s.sendWebSocketError(conn, "processing_error", "Translation failed")
		return
	}

	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No file uploaded")
		return
	}
	if int64(len(req.Image)) > s.maxUploadMB*1024*1024 {
		s.sendWebSocketError(conn, "invalid_request",
			fmt.Sprintf("File size exceeds %dMB limit", s.maxUploadMB))
		return
	}
	uploadSizeBytes.Observe(float64(len(req.Image)))

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	mode := "default"
	if req.RubyMode {
		mode = "ruby"
	}

	// Frames are written from the progress callback and from this
	// goroutine; gorilla connections allow one concurrent writer.
	var writeMu sync.Mutex
	send := func(resp WebSocketTranslateResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		s.sendWebSocketResponse(conn, resp)
	}

	send(WebSocketTranslateResponse{
		Type:      "translate_response",
		Status:    "processing",
		RequestID: requestID,
	})

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.pipeline.Run(ctx, pipeline.Request{
		Image:    req.Image,
		MIMEType: mimeType,
		RubyMode: req.RubyMode,
		Progress: func(stage pipeline.Stage) {
			send(WebSocketTranslateResponse{
				Type:      "translate_response",
				Status:    "processing",
				Stage:     string(stage),
				RequestID: requestID,
			})
		},
	})
	translateDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		translateRequestsTotal.WithLabelValues(mode, "error").Inc()
		s.sendWebSocketPipelineError(conn, &writeMu, clientID, err)
		return
	}

	translateRequestsTotal.WithLabelValues(mode, "success").Inc()
	send(WebSocketTranslateResponse{
		Type:      "translate_response",
		Status:    "completed",
		Result:    result,
		RequestID: requestID,
	})
}

// sendWebSocketPipelineError maps pipeline failures to error frames with
// the same user-facing messages as the HTTP endpoint.
func (s *Server) sendWebSocketPipelineError(conn *websocket.Conn, writeMu *sync.Mutex, clientID string, err error) {
	writeMu.Lock()
	defer writeMu.Unlock()

	switch {
	case errors.Is(err, pipeline.ErrNoTextDetected):
		s.sendWebSocketError(conn, "invalid_request", "No text found in the image")
	case errors.Is(err, pipeline.ErrNoJapaneseText):
		s.sendWebSocketError(conn, "invalid_request", "No Japanese text found in the image")
	default:
		var external *pipeline.ExternalError
		if errors.As(err, &external) {
			slog.Error("translation failed",
				"client", clientID,
				"service", external.Service,
				"kind", external.Kind,
				"error", external.Err)
			s.sendWebSocketError(conn, "processing_error", external.UserMessage())
			return
		}
		slog.Error("translation failed", "client", clientID, "error", err)
		s.sendWebSocketError(conn, "processing_error", "Translation failed")
	}
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketTranslateResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketTranslateResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
