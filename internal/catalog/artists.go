package catalog

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

func (s *Store) CreateArtist(ctx context.Context, in NewArtist) (*Artist, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	a := Artist{
		ID:       store.NewID(),
		Name:     strings.TrimSpace(in.Name),
		Genre:    in.Genre,
		Bio:      in.Bio,
		ImageURL: in.ImageURL,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO artists (id, name, genre, bio, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.ID, a.Name, a.Genre, a.Bio, a.ImageURL).Scan(&a.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore("create artist", err)
	}
	return &a, nil
}

// GetArtist returns the artist with its album and track counts.
func (s *Store) GetArtist(ctx context.Context, id string) (*Artist, error) {
	if err := store.CheckID("artist", id); err != nil {
		return nil, err
	}

	var a Artist
	err := s.db.QueryRow(ctx, `
		SELECT ar.id, ar.name, ar.genre, ar.bio, ar.image_url, ar.created_at,
		       (SELECT COUNT(*) FROM albums al WHERE al.artist_id = ar.id),
		       (SELECT COUNT(*) FROM tracks t JOIN albums al ON al.id = t.album_id
		         WHERE al.artist_id = ar.id)
		FROM artists ar
		WHERE ar.id = $1
	`, id).Scan(
		&a.ID,
		&a.Name,
		&a.Genre,
		&a.Bio,
		&a.ImageURL,
		&a.CreatedAt,
		&a.TotalAlbums,
		&a.TotalTracks,
	)
	if apperr.NoRows(err) {
		return nil, apperr.NotFound("artist")
	}
	if err != nil {
		return nil, apperr.FromStore("get artist", err)
	}
	return &a, nil
}

// DeleteArtist removes the artist and, through the foreign keys, its albums,
// their tracks and every playlist entry or favorite pointing at them.
func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	if err := store.CheckID("artist", id); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM artists WHERE id = $1`, id)
	s.forgetAlbums()
	if err != nil {
		return apperr.FromStore("delete artist", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("artist")
	}
	return nil
}

// ListAlbumsByArtist orders by release year (undated last), then title.
func (s *Store) ListAlbumsByArtist(ctx context.Context, artistID string) ([]Album, error) {
	if err := store.CheckID("artist", artistID); err != nil {
		return nil, err
	}

	var albums []Album
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		ok, err := exists(ctx, tx, "artists", artistID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("artist")
		}

		rows, err := tx.Query(ctx, `SELECT `+albumColumns+albumFrom+`
			WHERE al.artist_id = $1
			GROUP BY al.id, ar.name
			ORDER BY al.release_year ASC NULLS LAST, al.title ASC, al.id ASC`, artistID)
		if err != nil {
			return err
		}
		defer rows.Close()

		albums = make([]Album, 0)
		for rows.Next() {
			a, err := scanAlbum(rows)
			if err != nil {
				return err
			}
			albums = append(albums, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperr.FromStore("list artist albums", err)
	}
	return albums, nil
}
