// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a stored profile.
//
// Email is the natural key clients use; ID is assigned by the database and
// never appears in requests. Bio, Image and Gender are nullable columns, so
// they are pointers: nil marshals to JSON null, matching what the table holds.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	Image     *string   `json:"image"` // generated filename, never a path
	Gender    *string   `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

// Gender values understood by the opposite-gender listing.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// OppositeGender returns the gender a requester is shown.
//
// The mapping is deliberately two-valued and literal: only an exact "male"
// maps to "female". Everything else, including NULL, "Male" and any value
// outside the pair, maps to "male".
func OppositeGender(g *string) string {
	if g != nil && *g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
// Optional form fields go through this so "" is stored as NULL.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
