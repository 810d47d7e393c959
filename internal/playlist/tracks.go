package playlist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

func trackExists(ctx context.Context, q store.Querier, trackID string) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tracks WHERE id = $1)`, trackID).Scan(&ok)
	return ok, err
}

// AddTrack makes trackID a member of the playlist. Without a position the
// track is appended after the current last entry. An explicit position that
// is already taken moves that entry and every later one down by one.
func (e *Engine) AddTrack(ctx context.Context, playlistID, requesterID, trackID string, position *int) (*Entry, error) {
	if position != nil {
		if err := validate.Var("position", *position, "min=1"); err != nil {
			return nil, err
		}
	}
	if err := store.CheckID("playlist", playlistID); err != nil {
		return nil, err
	}
	if err := store.CheckID("track", trackID); err != nil {
		return nil, err
	}

	var entry Entry
	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, playlistID, requesterID); err != nil {
			return err
		}

		ok, err := trackExists(ctx, tx, trackID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("track")
		}

		var member bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM playlist_entries WHERE playlist_id = $1 AND track_id = $2)
		`, playlistID, trackID).Scan(&member); err != nil {
			return err
		}
		if member {
			return apperr.Conflict("track already in playlist")
		}

		var pos int
		if position == nil {
			if err := tx.QueryRow(ctx, `
				SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_entries WHERE playlist_id = $1
			`, playlistID).Scan(&pos); err != nil {
				return err
			}
		} else {
			pos = *position
			var taken bool
			if err := tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM playlist_entries WHERE playlist_id = $1 AND position = $2)
			`, playlistID, pos).Scan(&taken); err != nil {
				return err
			}
			if taken {
				if _, err := tx.Exec(ctx, `
					UPDATE playlist_entries SET position = position + 1
					WHERE playlist_id = $1 AND position >= $2
				`, playlistID, pos); err != nil {
					return err
				}
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO playlist_entries (id, playlist_id, track_id, position)
			VALUES ($1, $2, $3, $4)
		`, store.NewID(), playlistID, trackID, pos); err != nil {
			return err
		}

		entry, err = scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+entryFrom+`
			WHERE e.playlist_id = $1 AND e.track_id = $2`, playlistID, trackID))
		return err
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_playlist_entries_track" {
		return nil, apperr.Conflict("track already in playlist")
	}
	if err != nil {
		return nil, apperr.FromStore("add track", err)
	}
	return &entry, nil
}

// RemoveTrack drops the membership. Remaining positions are left as they are.
func (e *Engine) RemoveTrack(ctx context.Context, playlistID, requesterID, trackID string) error {
	if err := store.CheckID("playlist", playlistID); err != nil {
		return err
	}
	if err := store.CheckID("track", trackID); err != nil {
		return err
	}

	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, playlistID, requesterID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			DELETE FROM playlist_entries WHERE playlist_id = $1 AND track_id = $2
		`, playlistID, trackID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}

		ok, err := trackExists(ctx, tx, trackID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("track")
		}
		return apperr.Conflict("track is not in playlist")
	})
	return apperr.FromStore("remove track", err)
}
