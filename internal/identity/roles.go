package identity

import (
	"context"

	"music-platform/internal/apperr"
	"music-platform/internal/session"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

// Role decides which routes a user may call. Listeners use the catalog and
// their own playlists; admins may also edit the catalog.
type Role string

const (
	RoleListener Role = "listener"
	RoleAdmin    Role = "admin"
)

// Account reports the current standing of userID. It has the shape of
// session.AccountFunc so the HTTP layer can check every token against it.
func (s *Store) Account(ctx context.Context, userID string) (session.Account, bool, error) {
	if err := store.CheckID("user", userID); err != nil {
		return session.Account{}, false, nil
	}
	var (
		active bool
		role   string
	)
	err := s.db.QueryRow(ctx, `SELECT active, role FROM users WHERE id = $1`, userID).Scan(&active, &role)
	if apperr.NoRows(err) {
		return session.Account{}, false, nil
	}
	if err != nil {
		return session.Account{}, false, apperr.FromStore("account", err)
	}
	return session.Account{Active: active, Admin: Role(role) == RoleAdmin}, true, nil
}

// SetRole changes the role of the user registered under email.
func (s *Store) SetRole(ctx context.Context, email string, role Role) error {
	if err := validate.Var("role", string(role), "oneof=listener admin"); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET role = $1 WHERE email = $2`, string(role), normalizeEmail(email))
	if err != nil {
		return apperr.FromStore("set role", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
