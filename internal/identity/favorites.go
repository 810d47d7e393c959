package identity

import (
	"context"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/catalog"
	"music-platform/internal/store"
)

func (s *Store) checkUserAndTrack(ctx context.Context, q store.Querier, userID, trackID string) error {
	var userOK, trackOK bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1),
		       EXISTS (SELECT 1 FROM tracks WHERE id = $2)
	`, userID, trackID).Scan(&userOK, &trackOK)
	if err != nil {
		return err
	}
	if !userOK {
		return apperr.NotFound("user")
	}
	if !trackOK {
		return apperr.NotFound("track")
	}
	return nil
}

func checkIDs(userID, trackID string) error {
	if err := store.CheckID("user", userID); err != nil {
		return err
	}
	return store.CheckID("track", trackID)
}

// AddFavorite marks the track as a favorite. Adding an existing favorite is
// a no-op.
func (s *Store) AddFavorite(ctx context.Context, userID, trackID string) error {
	if err := checkIDs(userID, trackID); err != nil {
		return err
	}
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.checkUserAndTrack(ctx, tx, userID, trackID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO favorites (user_id, track_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, track_id) DO NOTHING
		`, userID, trackID)
		return err
	})
	return apperr.FromStore("add favorite", err)
}

// RemoveFavorite unmarks the track. Removing a track that is not a favorite
// is a no-op.
func (s *Store) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	if err := checkIDs(userID, trackID); err != nil {
		return err
	}
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.checkUserAndTrack(ctx, tx, userID, trackID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND track_id = $2`, userID, trackID)
		return err
	})
	return apperr.FromStore("remove favorite", err)
}

func (s *Store) IsFavorite(ctx context.Context, userID, trackID string) (bool, error) {
	if err := checkIDs(userID, trackID); err != nil {
		return false, err
	}
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND track_id = $2)
	`, userID, trackID).Scan(&ok)
	if err != nil {
		return false, apperr.FromStore("is favorite", err)
	}
	return ok, nil
}

// ListFavorites returns the user's favorite tracks, most recently added first.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]catalog.TrackDetail, error) {
	if err := store.CheckID("user", userID); err != nil {
		return nil, err
	}

	var tracks []catalog.TrackDetail
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var ok bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok); err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("user")
		}

		rows, err := tx.Query(ctx, `SELECT `+catalog.TrackDetailColumns+catalog.TrackDetailFrom+`
			JOIN favorites f ON f.track_id = t.id
			WHERE f.user_id = $1
			ORDER BY f.added_at DESC, t.id ASC`, userID)
		if err != nil {
			return err
		}
		tracks, err = catalog.CollectTrackDetails(rows)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("list favorites", err)
	}
	return tracks, nil
}
