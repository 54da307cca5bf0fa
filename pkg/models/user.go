// Package models contains domain types for trackdesk-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsentAge is the minimum age (in whole years) at which a user may opt in
// to being contacted or having their data shared. Below this age both consent
// flags are forced to false regardless of what the client submitted.
const ConsentAge = 15

// SentinelUsername is the reserved username of the placeholder account that
// absorbs references left dangling when a user is removed.
const SentinelUsername = "deleted"

// User represents a registered account.
type User struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	BirthDate       time.Time `json:"birth_date"`
	CanBeContacted  bool      `json:"can_be_contacted"`
	CanDataBeShared bool      `json:"can_data_be_shared"`
	IsSuperuser     bool      `json:"is_superuser"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Age returns the user's age in whole years at the given instant.
func (u *User) Age(now time.Time) int {
	return AgeAt(u.BirthDate, now)
}

// IsUnderConsentAge reports whether the underage consent override applies.
func (u *User) IsUnderConsentAge(now time.Time) bool {
	return u.Age(now) < ConsentAge
}

// ApplyConsentPolicy forces both consent flags to false when the user is
// below the consent age. Called at registration and on every profile update,
// always against the stored birth date.
func (u *User) ApplyConsentPolicy(now time.Time) {
	if u.IsUnderConsentAge(now) {
		u.CanBeContacted = false
		u.CanDataBeShared = false
	}
}

// AgeAt computes the whole-year age for a birth date at the given instant.
func AgeAt(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
