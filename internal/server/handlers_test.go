package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/shorts-worker/internal/pipeline"
	"github.com/jonathan/shorts-worker/internal/types"
)

// runnerFunc adapts a function to the Runner interface.
type runnerFunc func(ctx context.Context, url string) (*types.PipelineResult, error)

func (f runnerFunc) Process(ctx context.Context, url string) (*types.PipelineResult, error) {
	return f(ctx, url)
}

func successResult() *types.PipelineResult {
	return &types.PipelineResult{
		Status:              "success",
		OriginalVideo:       "Original Title",
		GeneratedShortTitle: "Wait For It",
		DriveLink:           "https://drive.google.com/file/d/xyz/view",
		Timestamps:          types.Timestamps{Start: "00:01:00", End: "00:02:15"},
		Reasoning:           "clear punchline",
	}
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	s := New(Config{Port: 0}, runner, zap.NewNop().Sugar())
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func postProcessVideo(s *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/process-video", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handleProcessVideo(w, req)
	return w
}

func TestHandleProcessVideoSuccess(t *testing.T) {
	var gotURL string
	s := newTestServer(t, runnerFunc(func(_ context.Context, url string) (*types.PipelineResult, error) {
		gotURL = url
		return successResult(), nil
	}))

	w := postProcessVideo(s, `{"youtube_url": "https://youtu.be/abc123"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://youtu.be/abc123", gotURL)

	var resp types.PipelineResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Original Title", resp.OriginalVideo)
	assert.Equal(t, "Wait For It", resp.GeneratedShortTitle)
	assert.Equal(t, "https://drive.google.com/file/d/xyz/view", resp.DriveLink)
	assert.Equal(t, "00:01:00", resp.Timestamps.Start)
	assert.Equal(t, "00:02:15", resp.Timestamps.End)
	assert.Equal(t, "clear punchline", resp.Reasoning)
}

func TestHandleProcessVideoPipelineFailure(t *testing.T) {
	s := newTestServer(t, runnerFunc(func(context.Context, string) (*types.PipelineResult, error) {
		return nil, &pipeline.StageError{
			Stage:   pipeline.StageFetch,
			Message: "download failed",
		}
	}))

	w := postProcessVideo(s, `{"youtube_url": "https://youtu.be/blocked"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp PipelineErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "download failed")
	assert.Equal(t, "fetch", resp.Stage)
}

func TestHandleProcessVideoBadRequests(t *testing.T) {
	called := false
	s := newTestServer(t, runnerFunc(func(context.Context, string) (*types.PipelineResult, error) {
		called = true
		return successResult(), nil
	}))

	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: `watch this video`},
		{name: "empty body", body: ``},
		{name: "missing youtube_url", body: `{}`},
		{name: "url not a URL", body: `{"youtube_url": "not a url"}`},
		{name: "unknown extra field", body: `{"youtube_url": "https://youtu.be/a", "quality": "4k"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postProcessVideo(s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	assert.False(t, called, "pipeline must not run for invalid requests")
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, runnerFunc(func(context.Context, string) (*types.PipelineResult, error) {
		return nil, nil
	}))

	for _, path := range []string{"/health", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "online", resp.Status)
		assert.Equal(t, ServiceName, resp.Service)
	}
}

func TestRateLimitRejectsBursts(t *testing.T) {
	s := newTestServer(t, runnerFunc(func(context.Context, string) (*types.PipelineResult, error) {
		return successResult(), nil
	}))

	// The default bucket allows a burst of 3 jobs per client.
	statuses := make([]int, 0, 4)
	for range 4 {
		req := httptest.NewRequest(http.MethodPost, "/process-video", strings.NewReader(`{"youtube_url": "https://youtu.be/a"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestCORSPreflights(t *testing.T) {
	s := newTestServer(t, runnerFunc(func(context.Context, string) (*types.PipelineResult, error) {
		return nil, nil
	}))

	req := httptest.NewRequest(http.MethodOptions, "/process-video", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
