// Package pipeline provides the orchestrator that sequences the four
// pipeline stages and owns job lifecycle and ephemeral-file cleanup.
package pipeline

import (
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/types"
)

// Fetcher retrieves a source video to local ephemeral storage.
type Fetcher interface {
	// Fetch downloads the video behind url. On failure it should still
	// return any partially written path so the job can reclaim the file.
	Fetch(ctx context.Context, url string) (*types.SourceVideo, error)
}

// Analyzer submits a local file to the inference service and returns the
// selected highlight segment.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*types.Segment, error)
}

// Transcoder cuts and reframes a local file to the given segment. The
// returned path is the output location the transcoder chose; it is reported
// even on failure so the job can reclaim a partial file.
type Transcoder interface {
	Transcode(ctx context.Context, path string, seg *types.Segment) (string, error)
}

// Publisher uploads a local file to remote storage under a display name and
// returns a publicly resolvable link.
type Publisher interface {
	Publish(ctx context.Context, path, displayName string) (string, error)
}

// Stages bundles the four collaborators for one job. A fresh set is
// constructed per job; nothing here is shared across jobs.
type Stages struct {
	Fetcher    Fetcher
	Analyzer   Analyzer
	Transcoder Transcoder
	Publisher  Publisher

	// Close releases resources the collaborators hold for this job, such
	// as the inference client's connection. May be nil.
	Close func() error
}

// StageFactory builds the stage collaborators for a single job.
// Construction failure (missing credentials, unreachable auth endpoint) is
// an init-stage error: no stage has run yet.
type StageFactory func(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*Stages, error)

// Runner executes jobs. It is safe for concurrent use: each Process call
// owns its Job and its stage collaborators outright.
type Runner struct {
	cfg *config.Config
	log *zap.SugaredLogger

	// Factory builds per-job collaborators. Defaults to NewStages; tests
	// substitute fakes here.
	Factory StageFactory

	// AfterCleanup, if set, is called once the job's ephemeral files have
	// been removed. Used by tests to observe the asynchronous cleanup.
	AfterCleanup func(job *types.Job)
}

// NewRunner creates a Runner using the real stage implementations.
func NewRunner(cfg *config.Config, log *zap.SugaredLogger) *Runner {
	return &Runner{cfg: cfg, log: log, Factory: NewStages}
}

// Process runs the full pipeline for one source URL and returns exactly one
// of a result or an error. Cleanup of the job's local files happens in the
// background after the outcome is determined, so the caller is never
// blocked on file deletion.
func (r *Runner) Process(ctx context.Context, sourceURL string) (*types.PipelineResult, error) {
	job := types.NewJob(sourceURL)
	log := r.log.With("job_id", job.ID)
	log.Infow("job started", "url", sourceURL)

	result, err := r.run(ctx, job, log)
	if err != nil {
		job.State = types.StateFailed
		log.Errorw("job failed", "error", err)
	} else {
		job.State = types.StateSucceeded
		log.Infow("job succeeded", "drive_link", result.DriveLink)
	}

	go r.cleanup(job, log)

	return result, err
}

// run drives the job through the stage sequence, short-circuiting on the
// first failure. Every local file a stage reports is registered on the job
// before the stage's error is inspected.
func (r *Runner) run(ctx context.Context, job *types.Job, log *zap.SugaredLogger) (*types.PipelineResult, error) {
	stages, err := r.Factory(ctx, r.cfg, log)
	if err != nil {
		return nil, stageError(StageInit, "service initialization failed", err)
	}
	defer func() {
		if stages.Close == nil {
			return
		}
		if err := stages.Close(); err != nil {
			log.Warnw("failed to release job resources", "error", err)
		}
	}()

	job.State = types.StateFetching
	log.Infow("downloading source video")
	src, err := stages.Fetcher.Fetch(ctx, job.SourceURL)
	if src != nil {
		job.AddEphemeral(src.Path)
	}
	if err != nil {
		return nil, stageError(StageFetch, "download failed", err)
	}
	log.Infow("download complete", "path", src.Path, "title", src.Title)

	job.State = types.StateAnalyzing
	log.Infow("analyzing video")
	seg, err := stages.Analyzer.Analyze(ctx, src.Path)
	if err != nil {
		return nil, stageError(StageAnalyze, "AI analysis failed", err)
	}
	log.Infow("segment selected", "start", seg.Start, "end", seg.End, "title", seg.SuggestedTitle)

	job.State = types.StateTranscoding
	log.Infow("editing video")
	out, err := stages.Transcoder.Transcode(ctx, src.Path, seg)
	job.AddEphemeral(out)
	if err != nil {
		return nil, stageError(StageTranscode, "editing failed", err)
	}
	log.Infow("editing complete", "path", out)

	title := seg.SuggestedTitle
	if title == "" {
		title = src.Title
	}

	job.State = types.StatePublishing
	log.Infow("uploading short")
	link, err := stages.Publisher.Publish(ctx, out, title)
	if err != nil {
		return nil, stageError(StagePublish, "upload failed", err)
	}

	return &types.PipelineResult{
		Status:              "success",
		OriginalVideo:       src.Title,
		GeneratedShortTitle: title,
		DriveLink:           link,
		Timestamps:          types.Timestamps{Start: seg.Start, End: seg.End},
		Reasoning:           seg.Reasoning,
	}, nil
}

// cleanup removes every ephemeral file the job created. It runs exactly
// once per job, on both outcomes, and its failures are logged, never
// escalated.
func (r *Runner) cleanup(job *types.Job, log *zap.SugaredLogger) {
	var g errgroup.Group
	for _, path := range job.Ephemerals {
		g.Go(func() error {
			if err := os.Remove(path); err != nil {
				if !os.IsNotExist(err) {
					log.Warnw("failed to delete ephemeral file", "path", path, "error", err)
				}
				return nil
			}
			log.Infow("cleaned up file", "path", path)
			return nil
		})
	}
	_ = g.Wait()

	if r.AfterCleanup != nil {
		r.AfterCleanup(job)
	}
}
