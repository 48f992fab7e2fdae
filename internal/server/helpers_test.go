package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yomitoru/yomitoru/internal/config"
	"github.com/yomitoru/yomitoru/internal/pipeline"
)

// stubPipeline records requests and returns a canned result or error.
type stubPipeline struct {
	mu       sync.Mutex
	requests []pipeline.Request
	result   *pipeline.Result
	err      error
}

func (p *stubPipeline) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if req.Progress != nil {
		req.Progress(pipeline.StageOCR)
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &pipeline.Result{
		JapaneseText: "こんにちは",
		EnglishText:  "Hello",
		TextBoxes:    []pipeline.Fragment{},
	}, nil
}

func (p *stubPipeline) lastRequest(t *testing.T) pipeline.Request {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests)
	return p.requests[len(p.requests)-1]
}

func newTestServer(t *testing.T, pl pipelineRunner) *Server {
	t.Helper()
	srv := NewServer(config.DefaultConfig(), pl)
	t.Cleanup(srv.Close)
	return srv
}

// newUploadRequest builds a multipart POST with one image part.
func newUploadRequest(t *testing.T, contentType string, payload []byte, rubyMode string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="page.png"`)
	hdr.Set("Content-Type", contentType)

	part, err := writer.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	if rubyMode != "" {
		require.NoError(t, writer.WriteField("rubyMode", rubyMode))
	}
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/translate", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}
