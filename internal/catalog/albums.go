package catalog

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

const albumColumns = `
	al.id, al.title, al.artist_id, ar.name, al.release_year, al.cover_url,
	al.description, al.created_at,
	COUNT(t.id), COALESCE(SUM(t.duration_seconds), 0)`

const albumFrom = `
	FROM albums al
	JOIN artists ar ON ar.id = al.artist_id
	LEFT JOIN tracks t ON t.album_id = al.id`

func scanAlbum(row pgx.Row) (Album, error) {
	var a Album
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.ArtistID,
		&a.ArtistName,
		&a.ReleaseYear,
		&a.CoverURL,
		&a.Description,
		&a.CreatedAt,
		&a.TotalTracks,
		&a.TotalDuration,
	)
	return a, err
}

func loadAlbum(ctx context.Context, q store.Querier, id string) (Album, error) {
	a, err := scanAlbum(q.QueryRow(ctx, `SELECT `+albumColumns+albumFrom+`
		WHERE al.id = $1
		GROUP BY al.id, ar.name`, id))
	if apperr.NoRows(err) {
		return Album{}, apperr.NotFound("album")
	}
	return a, err
}

func (s *Store) CreateAlbum(ctx context.Context, in NewAlbum) (*Album, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	artistID := strings.TrimSpace(in.ArtistID)
	if err := store.CheckID("artist", artistID); err != nil {
		return nil, err
	}

	var a Album
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		ok, err := exists(ctx, tx, "artists", artistID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("artist")
		}

		id := store.NewID()
		if _, err := tx.Exec(ctx, `
			INSERT INTO albums (id, title, artist_id, release_year, cover_url, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, title, artistID, in.ReleaseYear, in.CoverURL, in.Description); err != nil {
			return err
		}

		a, err = loadAlbum(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("create album", err)
	}
	return &a, nil
}

// GetAlbum returns the album with its track count and summed duration.
func (s *Store) GetAlbum(ctx context.Context, id string) (*Album, error) {
	if err := store.CheckID("album", id); err != nil {
		return nil, err
	}
	a, err := loadAlbum(ctx, s.db, id)
	if err != nil {
		return nil, apperr.FromStore("get album", err)
	}
	return &a, nil
}

func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	if err := store.CheckID("album", id); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	s.forgetAlbum(id)
	if err != nil {
		return apperr.FromStore("delete album", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("album")
	}
	return nil
}
