package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category constants for project categories.
const (
	CategoryBackend  = "back-end"
	CategoryFrontend = "front-end"
	CategoryAndroid  = "android"
	CategoryIOS      = "ios"
)

// ValidCategories contains all valid project category values.
var ValidCategories = []string{CategoryBackend, CategoryFrontend, CategoryAndroid, CategoryIOS}

// IsValidCategory checks if the given category is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Project represents a project in the system. The author is always a member
// of Contributors.
type Project struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     string      `json:"category"`
	AuthorID     uuid.UUID   `json:"author"`
	Contributors []uuid.UUID `json:"contributors"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ProjectSummary is the list view of a project. Author and contributors are
// only exposed on the detail view.
type ProjectSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

// Summary returns the list view of the project.
func (p *Project) Summary() *ProjectSummary {
	return &ProjectSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
	}
}

// HasContributor reports whether the given user is in the contributor set.
func (p *Project) HasContributor(userID uuid.UUID) bool {
	for _, id := range p.Contributors {
		if id == userID {
			return true
		}
	}
	return false
}

// DefaultProjectTitle returns the title used when a project is created with
// an empty title: "Project {unix-timestamp}".
func DefaultProjectTitle(now time.Time) string {
	return fmt.Sprintf("Project %d", now.Unix())
}

// Contributor is the join record granting a user access to a project.
// (user, project) pairs are unique; the set is deduplicated at the store.
type Contributor struct {
	UserID    uuid.UUID `json:"user"`
	ProjectID uuid.UUID `json:"project"`
	CreatedAt time.Time `json:"created_at"`
}
