package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Generation status constants.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// validTransitions maps each status to the set of statuses it may transition to.
var validTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Generation is the journal record of one relay request. It is purely
// diagnostic: the relay path never reads it back, and a failed journal
// write never fails the request.
type Generation struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Prompt      string     `json:"prompt"`
	AspectRatio string     `json:"aspect_ratio,omitempty"`
	TaskID      string     `json:"task_id,omitempty"`
	URL         string     `json:"url,omitempty"`
	Error       string     `json:"error,omitempty"`
	DurationMS  *int       `json:"duration_ms,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// NewID generates a new ULID string for use as an entity identifier.
func NewID() string {
	return ulid.Make().String()
}
