package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantW     int
		wantH     int
		wantError string
	}{
		{
			name:  "landscape stream",
			input: `{"streams": [{"width": 1920, "height": 1080}]}`,
			wantW: 1920, wantH: 1080,
		},
		{
			name:  "first stream wins",
			input: `{"streams": [{"width": 1280, "height": 720}, {"width": 640, "height": 360}]}`,
			wantW: 1280, wantH: 720,
		},
		{
			name:      "no streams",
			input:     `{"streams": []}`,
			wantError: "no video streams",
		},
		{
			name:      "zero dimensions",
			input:     `{"streams": [{"width": 0, "height": 1080}]}`,
			wantError: "invalid dimensions",
		},
		{
			name:      "not JSON",
			input:     `could not open file`,
			wantError: "failed to parse ffprobe output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := parseProbe([]byte(tt.input))
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}
