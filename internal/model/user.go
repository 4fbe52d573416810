// Package model defines the data structures used throughout the application.
package model

import "time"

// Role of a user account. "admin" is reserved for moderation tooling and has
// no special behaviour in the core API yet.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account on the board.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never appear in a response, in any code path. Excluding it
// at the serialization layer means no endpoint has to remember to strip it.
// The repositories additionally omit the column from every read except the
// credentials path (GetUserByEmailWithHash).
//
// Avatar stores only the filename under the storage directory; AvatarURL is
// derived from it by RefreshAvatarURL.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Avatar       string    `json:"-"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RefreshAvatarURL recomputes the public URL for the stored avatar filename.
// Call after loading a user and after avatar changes. A user without an
// avatar gets an empty URL (omitted from JSON).
func (u *User) RefreshAvatarURL() {
	if u.Avatar != "" {
		u.AvatarURL = "/storage/" + u.Avatar
	} else {
		u.AvatarURL = ""
	}
}
