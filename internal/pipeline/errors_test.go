package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	err := stageError(StageFetch, "download failed", cause)
	assert.Equal(t, "fetch failed: download failed: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := stageError(StageInit, "service initialization failed", nil)
	assert.Equal(t, "init failed: service initialization failed", bare.Error())
}

func TestStageOf(t *testing.T) {
	err := stageError(StageAnalyze, "AI analysis failed", errors.New("schema violation"))

	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageAnalyze, stage)

	// Stage survives further wrapping.
	wrapped := fmt.Errorf("pipeline failed: %w", err)
	stage, ok = StageOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, StageAnalyze, stage)

	_, ok = StageOf(errors.New("unrelated"))
	assert.False(t, ok)
}
