package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority constants for issues.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Tag constants for issues.
const (
	TagBug     = "bug"
	TagFeature = "feature"
	TagTask    = "task"
)

// Status constants for issues.
const (
	StatusToDo       = "to-do"
	StatusInProgress = "in-progress"
	StatusFinished   = "finished"
)

// ValidPriorities contains all valid issue priority values.
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidTags contains all valid issue tag values.
var ValidTags = []string{TagBug, TagFeature, TagTask}

// ValidStatuses contains all valid issue status values.
var ValidStatuses = []string{StatusToDo, StatusInProgress, StatusFinished}

// IsValidPriority checks if the given priority is valid.
func IsValidPriority(priority string) bool {
	return contains(ValidPriorities, priority)
}

// IsValidTag checks if the given tag is valid.
func IsValidTag(tag string) bool {
	return contains(ValidTags, tag)
}

// IsValidStatus checks if the given status is valid.
func IsValidStatus(status string) bool {
	return contains(ValidStatuses, status)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Issue represents an issue filed against a project. The project reference
// is immutable after creation; the assignee must be a contributor of the
// project at creation time.
type Issue struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project"`
	AuthorID    uuid.UUID `json:"author"`
	AssignedTo  uuid.UUID `json:"assigned_to"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Tag         string    `json:"tag"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultIssueTitle returns the title used when an issue is created with an
// empty title.
func DefaultIssueTitle(now time.Time) string {
	return fmt.Sprintf("Issue %d", now.Unix())
}
