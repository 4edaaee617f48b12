// Package fetch retrieves source videos to local ephemeral storage using
// the yt-dlp binary.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/types"
)

// Downloader fetches videos with yt-dlp. Quality is bounded by a height
// ceiling so downstream processing cost stays predictable.
type Downloader struct {
	binPath   string
	dir       string
	maxHeight int
	log       *zap.SugaredLogger
}

// New creates a Downloader writing into cfg.DownloadDir.
func New(cfg *config.Config, log *zap.SugaredLogger) *Downloader {
	return &Downloader{
		binPath:   "yt-dlp",
		dir:       cfg.DownloadDir,
		maxHeight: cfg.MaxSourceHeight,
		log:       log,
	}
}

// metadata is the subset of yt-dlp's info JSON the pipeline needs.
type metadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Fetch probes the video's metadata, then downloads it to a uniquely named
// local file. The destination path is reported even when the download
// fails, so the caller can reclaim a partial file.
func (d *Downloader) Fetch(ctx context.Context, url string) (*types.SourceVideo, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	meta, err := d.probe(ctx, url)
	if err != nil {
		return nil, err
	}

	// Unique stem so concurrent jobs never collide.
	dest := filepath.Join(d.dir, uuid.NewString()+".mp4")
	src := &types.SourceVideo{
		Path:     dest,
		Title:    meta.Title,
		VideoID:  meta.ID,
		Duration: meta.Duration,
	}

	args := downloadArgs(formatSelector(d.maxHeight), dest, url)
	d.log.Debugw("running yt-dlp", "args", args)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.binPath, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return src, fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, stderr.String())
	}

	if _, err := os.Stat(dest); err != nil {
		return src, fmt.Errorf("yt-dlp reported success but output is missing: %w", err)
	}

	return src, nil
}

// probe fetches the video's info JSON without downloading anything.
func (d *Downloader) probe(ctx context.Context, url string) (*metadata, error) {
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.binPath, "-J", "--no-warnings", url)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata probe failed: %w, stderr: %s", err, stderr.String())
	}
	return parseMetadata(out.Bytes())
}

func parseMetadata(data []byte) (*metadata, error) {
	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	if meta.Title == "" {
		meta.Title = "Untitled Video"
	}
	return &meta, nil
}

// formatSelector prefers separate best video+audio streams capped at
// maxHeight, falling back to the best single mp4.
func formatSelector(maxHeight int) string {
	return fmt.Sprintf("bestvideo[height<=%d][ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best", maxHeight)
}

func downloadArgs(format, dest, url string) []string {
	return []string{
		"-f", format,
		"--merge-output-format", "mp4",
		"-o", dest,
		"--no-warnings",
		"--quiet",
		url,
	}
}
