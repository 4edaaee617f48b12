package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies which part of the pipeline an error originated from.
type Stage string

const (
	StageInit      Stage = "init"
	StageFetch     Stage = "fetch"
	StageAnalyze   Stage = "analyze"
	StageTranscode Stage = "transcode"
	StagePublish   Stage = "publish"
)

// StageError is the uniform failure the orchestrator returns: the first
// stage to fail terminates the job, and its error is tagged with the stage
// of origin. Stage collaborators return plain errors; only the orchestrator
// wraps them.
type StageError struct {
	Stage   Stage
	Message string
	Cause   error
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

func stageError(stage Stage, message string, cause error) *StageError {
	return &StageError{Stage: stage, Message: message, Cause: cause}
}

// StageOf extracts the originating stage from an error chain. The second
// return is false when the error did not come from a pipeline stage.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
