package identity

import "time"

// User never carries the plaintext password. PasswordHash stays inside this
// package's callers and is not part of any payload.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Active         bool
	CreatedAt      time.Time
	TotalPlaylists int
	TotalFavorites int
}

// ProfilePatch carries a partial profile update; nil fields are unchanged.
type ProfilePatch struct {
	Name  *string
	Email *string
}
