package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline failure taxonomy. Stage code wraps its
// errors with one of these so the orchestrator can classify the outcome
// without inspecting message text.
var (
	// ErrValidation marks malformed or unsupported input rejected at
	// submission time; a job is never created for it.
	ErrValidation = errors.New("validation error")
	// ErrFatalStage marks a failure in a stage that cannot be tolerated;
	// the job transitions to failed with the message preserved verbatim.
	ErrFatalStage = errors.New("fatal stage error")
	// ErrPartial marks a tolerated per-unit failure; the pipeline records a
	// note and continues.
	ErrPartial = errors.New("partial failure")
	// ErrBatchDegraded marks a batch-level inference failure that triggers
	// the sequential fallback within the same stage.
	ErrBatchDegraded = errors.New("batch degraded")
	// ErrInfrastructure marks dispatch/enqueue failures raised before a job
	// reaches processing.
	ErrInfrastructure = errors.New("infrastructure error")
	// ErrExternalTool marks failures of exec'd helper binaries.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks unusable capability or daemon configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrFatalStage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err should fail the job outright.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPartial) || errors.Is(err, ErrBatchDegraded) {
		return false
	}
	return true
}

// Message extracts the human-readable portion of a wrapped stage error,
// stripping the sentinel prefix so job records carry the original text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{
		ErrValidation, ErrFatalStage, ErrPartial, ErrBatchDegraded,
		ErrInfrastructure, ErrExternalTool, ErrConfiguration,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
