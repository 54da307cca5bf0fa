package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on an issue. The ID is an opaque token rather
// than a sequential number.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	IssueID     uuid.UUID `json:"issue"`
	AuthorID    uuid.UUID `json:"author"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
