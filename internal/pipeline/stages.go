package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/shorts-worker/internal/analyze"
	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/fetch"
	"github.com/jonathan/shorts-worker/internal/publish"
	"github.com/jonathan/shorts-worker/internal/transcode"
)

// NewStages is the default StageFactory. It validates the configuration and
// constructs fresh collaborators for one job, authenticating against the
// inference and storage services up front so credential problems surface as
// init errors before any stage runs.
func NewStages(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Stages, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	analyzer, err := analyze.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	uploader, err := publish.New(ctx, cfg, log)
	if err != nil {
		_ = analyzer.Close()
		return nil, err
	}

	return &Stages{
		Fetcher:    fetch.New(cfg, log),
		Analyzer:   analyzer,
		Transcoder: transcode.New(cfg, log),
		Publisher:  uploader,
		Close:      analyzer.Close,
	}, nil
}
