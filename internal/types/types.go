// Package types provides the data model shared across the pipeline stages.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobState tracks how far a job has progressed through the pipeline.
type JobState string

const (
	StateInit        JobState = "init"
	StateFetching    JobState = "fetching"
	StateAnalyzing   JobState = "analyzing"
	StateTranscoding JobState = "transcoding"
	StatePublishing  JobState = "publishing"
	StateSucceeded   JobState = "succeeded"
	StateFailed      JobState = "failed"
)

// Job is one end-to-end pipeline execution for one source URL. A Job is
// owned exclusively by the goroutine running it; it is never shared or
// resumed, so no locking is needed.
type Job struct {
	ID         string
	SourceURL  string
	State      JobState
	Ephemerals []string // local files owned by this job, deleted after it terminates
	CreatedAt  time.Time
}

// NewJob creates a Job in the init state with a fresh short identifier.
func NewJob(sourceURL string) *Job {
	return &Job{
		ID:        uuid.NewString()[:8],
		SourceURL: sourceURL,
		State:     StateInit,
		CreatedAt: time.Now().UTC(),
	}
}

// AddEphemeral registers a local file for deletion when the job terminates.
// Empty paths are ignored so stages can report "no file was produced".
func (j *Job) AddEphemeral(path string) {
	if path != "" {
		j.Ephemerals = append(j.Ephemerals, path)
	}
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.State == StateSucceeded || j.State == StateFailed
}

// SourceVideo describes the media file produced by the fetch stage.
type SourceVideo struct {
	Path     string // local ephemeral path
	Title    string
	VideoID  string
	Duration float64 // seconds, as reported by the source
}

// CropFocus is the AI-suggested horizontal anchor for portrait reframing.
type CropFocus string

const (
	FocusCenter CropFocus = "center"
	FocusLeft   CropFocus = "left"
	FocusRight  CropFocus = "right"
)

// Segment is the AI-selected time range to extract, plus the descriptive
// metadata the model returns alongside it. Timestamps are HH:MM:SS strings,
// matching what the transcoder passes to ffmpeg verbatim.
type Segment struct {
	Start          string    `json:"start_time"`
	End            string    `json:"end_time"`
	ViralityScore  int       `json:"virality_score"`
	Reasoning      string    `json:"reasoning"`
	SuggestedTitle string    `json:"suggested_title"`
	CropFocus      CropFocus `json:"crop_focus,omitempty"`
}

// Validate checks that both timestamps are well formed, that the segment has
// positive length, and that the crop focus (if present) is a known anchor.
func (s *Segment) Validate() error {
	start, err := ParseTimestamp(s.Start)
	if err != nil {
		return fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := ParseTimestamp(s.End)
	if err != nil {
		return fmt.Errorf("invalid end_time: %w", err)
	}
	if end <= start {
		return fmt.Errorf("segment end %q must be after start %q", s.End, s.Start)
	}
	switch s.CropFocus {
	case "", FocusCenter, FocusLeft, FocusRight:
	default:
		return fmt.Errorf("unknown crop_focus %q", s.CropFocus)
	}
	return nil
}

// Length returns the segment duration. Validate must have passed.
func (s *Segment) Length() time.Duration {
	start, _ := ParseTimestamp(s.Start)
	end, _ := ParseTimestamp(s.End)
	return end - start
}

// ParseTimestamp parses an HH:MM:SS (or MM:SS) timestamp into a duration
// from the start of the video.
func ParseTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q is not in HH:MM:SS format", ts)
	}

	var total time.Duration
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q has an invalid component %q", ts, part)
		}
		total = total*60 + time.Duration(n)*time.Second
	}
	if sec := parts[len(parts)-1]; len(sec) > 0 {
		if n, _ := strconv.Atoi(sec); n > 59 {
			return 0, fmt.Errorf("timestamp %q has seconds out of range", ts)
		}
	}
	if len(parts) == 3 {
		if n, _ := strconv.Atoi(parts[1]); n > 59 {
			return 0, fmt.Errorf("timestamp %q has minutes out of range", ts)
		}
	}
	return total, nil
}

// Timestamps is the start/end pair echoed back to the caller.
type Timestamps struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PipelineResult is the final success payload assembled by the orchestrator.
type PipelineResult struct {
	Status              string     `json:"status"`
	OriginalVideo       string     `json:"original_video"`
	GeneratedShortTitle string     `json:"generated_short_title"`
	DriveLink           string     `json:"drive_link"`
	Timestamps          Timestamps `json:"timestamps"`
	Reasoning           string     `json:"reasoning"`
}
