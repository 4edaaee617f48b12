// Package analyze submits local video files to the Gemini inference service
// and extracts a structured highlight segment.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/prompts"
	"github.com/jonathan/shorts-worker/internal/types"
)

// ErrProcessingTimeout indicates the inference service stayed in the
// processing state longer than the configured poll timeout.
var ErrProcessingTimeout = errors.New("inference service did not finish processing in time")

// Analyzer uploads a video to the Gemini Files API, waits for ingestion,
// and asks the model for one highlight segment constrained to a fixed
// response schema.
type Analyzer struct {
	client       *genai.Client
	files        fileStore
	generate     generateFunc
	model        string
	pollInterval time.Duration
	pollTimeout  time.Duration
	minSeconds   int
	maxSeconds   int
	log          *zap.SugaredLogger
}

// generateFunc requests a structured reply for an ingested remote file.
type generateFunc func(ctx context.Context, file *genai.File, prompt string) (string, error)

// New creates an Analyzer. The API key is required.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Analyzer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("inference API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	a := &Analyzer{
		client:       client,
		files:        client,
		model:        cfg.GeminiModel,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		minSeconds:   cfg.MinSegmentSeconds,
		maxSeconds:   cfg.MaxSegmentSeconds,
		log:          log,
	}
	a.generate = a.generateSegment
	return a, nil
}

// Analyze uploads the file, waits until the service has ingested it, and
// requests one structured highlight segment. The remote copy of the upload
// is deleted on every path out of this method, success or failure.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*types.Segment, error) {
	file, err := a.files.UploadFileFromPath(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("upload to inference service failed: %w", err)
	}

	defer func() {
		// Deletion must happen even when the request context is gone.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := a.files.DeleteFile(dctx, file.Name); err != nil {
			a.log.Warnw("failed to delete remote file", "name", file.Name, "error", err)
			return
		}
		a.log.Infow("deleted remote file", "name", file.Name)
	}()

	ready, err := waitForFile(ctx, a.files, file, a.pollInterval, a.pollTimeout)
	if err != nil {
		return nil, err
	}

	a.log.Debugw("requesting highlight segment", "model", a.model)
	text, err := a.generate(ctx, ready, a.buildPrompt())
	if err != nil {
		return nil, err
	}

	return parseSegment(cleanJSONBlock(text))
}

// generateSegment asks the model for one highlight segment, constrained
// server-side to the segment response schema.
func (a *Analyzer) generateSegment(ctx context.Context, file *genai.File, prompt string) (string, error) {
	model := a.client.GenerativeModel(a.model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = segmentSchema()

	resp, err := model.GenerateContent(ctx,
		genai.FileData{URI: file.URI, MIMEType: file.MIMEType},
		genai.Text(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	return extractTextFromResponse(resp)
}

func (a *Analyzer) buildPrompt() string {
	template := prompts.MustGet("analyze.json", "select-highlight")
	return prompts.Format(template, map[string]string{
		"MinSeconds": strconv.Itoa(a.minSeconds),
		"MaxSeconds": strconv.Itoa(a.maxSeconds),
	})
}

// fileGetter is the slice of the Gemini client the poll loop needs.
type fileGetter interface {
	GetFile(ctx context.Context, name string) (*genai.File, error)
}

// fileStore is the slice of the Gemini client that manages the remote
// file lifecycle: upload, ingestion polling, and deletion.
type fileStore interface {
	fileGetter
	UploadFileFromPath(ctx context.Context, path string, opts *genai.UploadFileOptions) (*genai.File, error)
	DeleteFile(ctx context.Context, name string) error
}

// waitForFile polls the uploaded file's processing state at a fixed
// interval until it becomes active, fails, or the wall-clock timeout
// elapses.
func waitForFile(ctx context.Context, store fileGetter, file *genai.File, interval, timeout time.Duration) (*genai.File, error) {
	deadline := time.Now().Add(timeout)
	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w (waited %s)", ErrProcessingTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		var err error
		file, err = store.GetFile(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to poll file state: %w", err)
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("inference service failed to process the video")
	}
	return file, nil
}

// parseSegment validates the model's JSON against the segment schema and
// decodes it. A schema-violating response is an error, never a crash.
func parseSegment(jsonText string) (*types.Segment, error) {
	if err := validateSegmentJSON(jsonText); err != nil {
		return nil, fmt.Errorf("model response violates segment schema: %w", err)
	}

	var seg types.Segment
	if err := json.Unmarshal([]byte(jsonText), &seg); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	if err := seg.Validate(); err != nil {
		return nil, fmt.Errorf("model returned an unusable segment: %w", err)
	}
	return &seg, nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Close releases the underlying inference client.
func (a *Analyzer) Close() error {
	return a.client.Close()
}
