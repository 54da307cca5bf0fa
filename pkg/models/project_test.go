package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	for _, c := range ValidCategories {
		assert.True(t, IsValidCategory(c), c)
	}
	assert.False(t, IsValidCategory("desktop"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Back-End"))
}

func TestDefaultProjectTitle(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, "Project 1700000000", DefaultProjectTitle(now))
}

func TestProjectHasContributor(t *testing.T) {
	member := uuid.New()
	outsider := uuid.New()

	p := &Project{Contributors: []uuid.UUID{uuid.New(), member}}

	assert.True(t, p.HasContributor(member))
	assert.False(t, p.HasContributor(outsider))
}

func TestIssueEnums(t *testing.T) {
	assert.True(t, IsValidPriority(PriorityMedium))
	assert.False(t, IsValidPriority("urgent"))
	assert.True(t, IsValidTag(TagFeature))
	assert.False(t, IsValidTag("chore"))
	assert.True(t, IsValidStatus(StatusInProgress))
	assert.False(t, IsValidStatus("done"))
}
