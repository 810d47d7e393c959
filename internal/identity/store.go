// Package identity stores users, verifies credentials and keeps each user's
// set of favorite tracks.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
)

type Store struct {
	db     store.DB
	hasher PasswordHasher
}

func NewStore(db store.DB, hasher PasswordHasher) *Store {
	return &Store{db: db, hasher: hasher}
}

const userColumns = `id, name, email, password_hash, active, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Active,
		&u.CreatedAt,
	)
	return u, err
}

// userWithTotals selects a user with playlist and favorite counts. Callers
// append the WHERE clause on alias u.
const userWithTotals = `
	SELECT u.id, u.name, u.email, u.password_hash, u.active, u.created_at,
	       (SELECT COUNT(*) FROM playlists p WHERE p.owner_id = u.id),
	       (SELECT COUNT(*) FROM favorites f WHERE f.user_id = u.id)
	FROM users u`

func scanUserWithTotals(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Active,
		&u.CreatedAt,
		&u.TotalPlaylists,
		&u.TotalFavorites,
	)
	return u, err
}

func emailTaken(ctx context.Context, q store.Querier, email, exceptID string) (bool, error) {
	var taken bool
	var err error
	if exceptID == "" {
		err = q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken)
	} else {
		err = q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
			email, exceptID).Scan(&taken)
	}
	return taken, err
}

// Register creates an active user. The email is stored lowercased.
func (s *Store) Register(ctx context.Context, name, email, password string) (*User, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Unexpected("hash password", err)
	}

	u := User{ID: store.NewID(), Name: name, Email: email, PasswordHash: hash, Active: true}
	err = store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		taken, err := emailTaken(ctx, tx, email, "")
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("email already registered")
		}
		return tx.QueryRow(ctx, `
			INSERT INTO users (id, name, email, password_hash, active)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING created_at
		`, u.ID, u.Name, u.Email, u.PasswordHash).Scan(&u.CreatedAt)
	})
	if err = apperr.FromStore("register", err); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate reports InvalidCredentials for an unknown email and for a
// wrong password alike. InactiveAccount is only returned once the password
// has been verified.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.InvalidCredentials()
	}

	u, err := scanUserWithTotals(s.db.QueryRow(ctx, userWithTotals+`
		WHERE u.email = $1`, email))
	if apperr.NoRows(err) {
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, apperr.FromStore("authenticate", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}
	if !u.Active {
		return nil, apperr.InactiveAccount()
	}
	return &u, nil
}

// GetUser returns the user with playlist and favorite counts.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	if err := store.CheckID("user", id); err != nil {
		return nil, err
	}

	u, err := scanUserWithTotals(s.db.QueryRow(ctx, userWithTotals+`
		WHERE u.id = $1`, id))
	if apperr.NoRows(err) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.FromStore("get user", err)
	}
	return &u, nil
}

// UpdateProfile re-validates the given fields. A new email must not belong
// to any other user.
func (s *Store) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*User, error) {
	if err := store.CheckID("user", userID); err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return nil, err
		}
		args = append(args, name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	email := ""
	if patch.Email != nil {
		v, err := validateEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		email = v
		args = append(args, email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}

	var u User
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		u, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
		if apperr.NoRows(err) {
			return apperr.NotFound("user")
		}
		if err != nil || len(sets) == 0 {
			return err
		}

		if email != "" && email != u.Email {
			taken, err := emailTaken(ctx, tx, email, userID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("email already registered")
			}
		}

		args = append(args, userID)
		u, err = scanUser(tx.QueryRow(ctx, fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), userColumns), args...))
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("update profile", err)
	}
	return &u, nil
}

func (s *Store) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := store.CheckID("user", userID); err != nil {
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperr.Unexpected("hash password", err)
	}

	err = store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var stored string
		err := tx.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&stored)
		if apperr.NoRows(err) {
			return apperr.NotFound("user")
		}
		if err != nil {
			return err
		}
		if !s.hasher.Verify(current, stored) {
			return apperr.InvalidCredentials()
		}
		_, err = tx.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID)
		return err
	})
	return apperr.FromStore("change password", err)
}

// Deactivate blocks future logins for the user.
func (s *Store) Deactivate(ctx context.Context, userID string) error {
	if err := store.CheckID("user", userID); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET active = FALSE WHERE id = $1`, userID)
	if err != nil {
		return apperr.FromStore("deactivate", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
