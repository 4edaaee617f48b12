package transcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// probeOutput mirrors the relevant slice of ffprobe's -of json output.
type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// probe returns the width and height of the first video stream.
func (e *Editor) probe(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, stderr.String())
	}

	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) (int, int, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, 0, fmt.Errorf("ffprobe reported no video streams")
	}

	w, h := probe.Streams[0].Width, probe.Streams[0].Height
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("ffprobe reported invalid dimensions %dx%d", w, h)
	}
	return w, h, nil
}
