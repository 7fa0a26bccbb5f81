package provider

import (
	"errors"
	"fmt"
	"time"
)

// Validation and configuration errors, checked before any network call.
var (
	ErrMissingPrompt     = errors.New("prompt is required")
	ErrMissingCredential = errors.New("provider credential is not configured")
)

// SubmitTimeoutError indicates the submission call exceeded its deadline.
// The in-flight request is aborted; its result is never observed.
type SubmitTimeoutError struct {
	Timeout time.Duration
}

func (e *SubmitTimeoutError) Error() string {
	return fmt.Sprintf("provider did not answer within %s", e.Timeout)
}

// QuotaError indicates the provider rejected the submission with HTTP 429.
// It is distinct from ProviderError so callers can surface a specific
// remediation message and a machine-readable flag.
type QuotaError struct {
	Body string
}

func (e *QuotaError) Error() string {
	return "provider quota exceeded; wait for the limit to reset or upgrade your plan"
}

// ProviderError indicates a non-success submission response other than 429.
// Body carries the raw response; logging truncates it, the error does not.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// TaskFailedError indicates the task reached a terminal failure state
// during polling.
type TaskFailedError struct {
	TaskID string
	Status string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s failed with status %s", e.TaskID, e.Status)
}

// PollTimeoutError indicates the poll attempt budget was exhausted without
// the task reaching a terminal state. The task may still be running on the
// provider side.
type PollTimeoutError struct {
	TaskID   string
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("task %s did not finish within %d poll attempts", e.TaskID, e.Attempts)
}
