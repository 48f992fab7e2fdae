package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomitoru/yomitoru/internal/pipeline"
)

func dialTestServer(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/translate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketTranslateResponse {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp WebSocketTranslateResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

// readUntilTerminal drains progress frames and returns the completed or
// error frame.
func readUntilTerminal(t *testing.T, conn *websocket.Conn) (WebSocketTranslateResponse, []string) {
	t.Helper()

	var stages []string
	for i := 0; i < 20; i++ {
		resp := readResponse(t, conn)
		switch resp.Status {
		case "processing":
			if resp.Stage != "" {
				stages = append(stages, resp.Stage)
			}
		default:
			return resp, stages
		}
	}
	t.Fatal("no terminal frame received")
	return WebSocketTranslateResponse{}, nil
}

func sendRequest(t *testing.T, conn *websocket.Conn, req WebSocketTranslateRequest) {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestWebSocketTranslate_Success(t *testing.T) {
	pl := &stubPipeline{result: &pipeline.Result{
		JapaneseText: "こんにちは",
		EnglishText:  "Hello",
		TextBoxes:    []pipeline.Fragment{},
	}}
	conn := dialTestServer(t, newTestServer(t, pl))

	sendRequest(t, conn, WebSocketTranslateRequest{Image: []byte("imagebytes")})

	resp, stages := readUntilTerminal(t, conn)
	require.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Hello", resp.Result.EnglishText)
	assert.NotEmpty(t, resp.RequestID)
	assert.Contains(t, stages, string(pipeline.StageOCR))
}

func TestWebSocketTranslate_InvalidJSON(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, &stubPipeline{}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
}

func TestWebSocketTranslate_EmptyImage(t *testing.T) {
	conn := dialTestServer(t, newTestServer(t, &stubPipeline{}))

	sendRequest(t, conn, WebSocketTranslateRequest{})

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "No file uploaded", resp.Error)
}

func TestWebSocketTranslate_RateLimited(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})
	conn := dialTestServer(t, srv)

	sendRequest(t, conn, WebSocketTranslateRequest{Image: []byte("img")})
	resp, _ := readUntilTerminal(t, conn)
	require.Equal(t, "completed", resp.Status)

	sendRequest(t, conn, WebSocketTranslateRequest{Image: []byte("img")})
	resp = readResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "rate_limited", resp.ErrorType)
	assert.Regexp(t, `^Please wait \d+ seconds before next upload$`, resp.Error)
}

func TestWebSocketTranslate_PipelineError(t *testing.T) {
	pl := &stubPipeline{err: pipeline.ErrNoJapaneseText}
	conn := dialTestServer(t, newTestServer(t, pl))

	sendRequest(t, conn, WebSocketTranslateRequest{Image: []byte("img")})

	resp, _ := readUntilTerminal(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "No Japanese text found in the image", resp.Error)
}
