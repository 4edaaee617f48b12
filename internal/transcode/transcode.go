// Package transcode cuts and reframes local video files with ffmpeg.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/types"
)

// Editor trims a video to a segment and, when the input is landscape,
// applies a 9:16 crop anchored by the segment's focus hint. Encoding
// parameters are fixed, not content-adaptive, so output is deterministic.
type Editor struct {
	ffmpegPath  string
	ffprobePath string
	outDir      string
	log         *zap.SugaredLogger
}

// New creates an Editor writing into cfg.OutputDir.
func New(cfg *config.Config, log *zap.SugaredLogger) *Editor {
	return &Editor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		outDir:      cfg.OutputDir,
		log:         log,
	}
}

// Transcode produces a new local file trimmed to seg. The chosen output
// path is returned even on failure so the caller can reclaim a partial
// file. The segment must already be validated; a non-positive range is
// rejected here as a defense against a misbehaving analyzer.
func (e *Editor) Transcode(ctx context.Context, path string, seg *types.Segment) (string, error) {
	if err := seg.Validate(); err != nil {
		return "", fmt.Errorf("refusing to cut invalid segment: %w", err)
	}

	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	width, height, err := e.probe(ctx, path)
	if err != nil {
		return "", err
	}
	e.log.Infow("probed input dimensions", "width", width, "height", height)

	out := filepath.Join(e.outDir, uuid.NewString()+"_short.mp4")
	args := buildArgs(path, out, seg, width, height)
	e.log.Debugw("running ffmpeg", "args", args)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("ffmpeg failed: %w, output: %s", err, tail(output))
	}

	// A zero exit does not guarantee the file exists; treat absence as
	// interface breakage rather than success.
	if _, err := os.Stat(out); err != nil {
		return out, fmt.Errorf("ffmpeg finished but output file is missing: %w", err)
	}

	return out, nil
}

// buildArgs assembles the ffmpeg invocation: trim to the segment, re-encode
// with fixed quality, and crop only when the input is landscape.
func buildArgs(in, out string, seg *types.Segment, width, height int) []string {
	args := []string{
		"-y",
		"-i", in,
		"-ss", seg.Start,
		"-to", seg.End,
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "slow",
		"-c:a", "aac",
		"-b:a", "192k",
	}

	if crop, ok := cropWindow(width, height, seg.CropFocus); ok {
		args = append(args, "-vf", crop.filter())
	}

	args = append(args, out)
	return args
}

// cropValues holds the computed 9:16 crop window for a landscape input.
type cropValues struct {
	Width   int // target width, always even (encoder constraint)
	Height  int // input height, unchanged
	XOffset int // horizontal offset per the focus hint
}

func (c cropValues) filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:0", c.Width, c.Height, c.XOffset)
}

// cropWindow computes the 9:16 crop for the given input dimensions. A
// portrait (or square) input needs no crop and returns ok=false. The target
// width is h*9/16 rounded to the nearest even number; the offset defaults
// to centered and moves to the edge named by the focus hint.
func cropWindow(width, height int, focus types.CropFocus) (cropValues, bool) {
	if height >= width {
		return cropValues{}, false
	}

	target := int(math.Round(float64(height)*9.0/16.0/2.0)) * 2
	if target > width {
		target = width
	}

	var x int
	switch focus {
	case types.FocusLeft:
		x = 0
	case types.FocusRight:
		x = width - target
	default:
		x = (width - target) / 2
	}

	return cropValues{Width: target, Height: height, XOffset: x}, true
}

// tail returns the last portion of command output, enough for diagnostics
// without flooding the error message.
func tail(output []byte) []byte {
	const max = 2048
	output = bytes.TrimSpace(output)
	if len(output) > max {
		return output[len(output)-max:]
	}
	return output
}
