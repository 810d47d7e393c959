package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches term case-insensitively against track title, album title
// and artist name. An empty term lists the whole catalog. Results are
// ordered by track title.
func (s *Store) Search(ctx context.Context, term string, limit, offset int) ([]TrackDetail, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, apperr.Validation("limit", "limit and offset must be non-negative")
	}

	where := ""
	args := []any{}
	if term = strings.TrimSpace(term); term != "" {
		where = `
		WHERE t.title ILIKE $1 OR al.title ILIKE $1 OR ar.name ILIKE $1`
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
	}

	var (
		total  int
		tracks []TrackDetail
	)
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*)`+TrackDetailFrom+where, args...).Scan(&total); err != nil {
			return err
		}

		n := len(args)
		rows, err := tx.Query(ctx, `SELECT `+TrackDetailColumns+TrackDetailFrom+where+
			fmt.Sprintf(`
		ORDER BY t.title ASC, t.id ASC
		LIMIT $%d OFFSET $%d`, n+1, n+2),
			append(args, limit, offset)...)
		if err != nil {
			return err
		}
		tracks, err = CollectTrackDetails(rows)
		return err
	})
	if err != nil {
		return nil, 0, apperr.FromStore("search tracks", err)
	}
	return tracks, total, nil
}

// GetTrack always reads the track row, so play counts and edits made by any
// process are visible. Only the album and artist half may come from cache.
func (s *Store) GetTrack(ctx context.Context, id string) (*TrackDetail, error) {
	if err := store.CheckID("track", id); err != nil {
		return nil, err
	}
	if s.albums == nil {
		td, err := loadTrackDetail(ctx, s.db, id)
		if err != nil {
			return nil, apperr.FromStore("get track", err)
		}
		return &td, nil
	}

	var td TrackDetail
	err := s.db.QueryRow(ctx, `
		SELECT id, title, album_id, duration_seconds, file_url, track_number, play_count, created_at
		FROM tracks
		WHERE id = $1
	`, id).Scan(
		&td.ID,
		&td.Title,
		&td.AlbumID,
		&td.DurationSeconds,
		&td.FileURL,
		&td.TrackNumber,
		&td.PlayCount,
		&td.CreatedAt,
	)
	if apperr.NoRows(err) {
		return nil, apperr.NotFound("track")
	}
	if err != nil {
		return nil, apperr.FromStore("get track", err)
	}

	ref, err := s.albumRef(ctx, td.AlbumID)
	if apperr.NoRows(err) {
		// The album went away between the two reads.
		return nil, apperr.NotFound("track")
	}
	if err != nil {
		return nil, apperr.FromStore("get track", err)
	}
	td.AlbumTitle = ref.Title
	td.AlbumCover = ref.Cover
	td.ArtistID = ref.ArtistID
	td.ArtistName = ref.ArtistName
	return &td, nil
}

func (s *Store) CreateTrack(ctx context.Context, in NewTrack) (*TrackDetail, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	albumID := strings.TrimSpace(in.AlbumID)
	fileURL := strings.TrimSpace(in.FileURL)
	if err := store.CheckID("album", albumID); err != nil {
		return nil, err
	}

	var td TrackDetail
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		ok, err := exists(ctx, tx, "albums", albumID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("album")
		}

		id := store.NewID()
		if _, err := tx.Exec(ctx, `
			INSERT INTO tracks (id, title, album_id, duration_seconds, file_url, track_number)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, title, albumID, in.DurationSeconds, fileURL, in.TrackNumber); err != nil {
			return err
		}

		td, err = loadTrackDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("create track", err)
	}
	return &td, nil
}

// UpdateTrack applies only the fields set in patch.
func (s *Store) UpdateTrack(ctx context.Context, id string, patch TrackPatch) (*TrackDetail, error) {
	if err := store.CheckID("track", id); err != nil {
		return nil, err
	}
	if patch.empty() {
		return s.GetTrack(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if err := validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	var albumID string
	if patch.AlbumID != nil {
		albumID = strings.TrimSpace(*patch.AlbumID)
		if err := store.CheckID("album", albumID); err != nil {
			return nil, err
		}
		set("album_id", albumID)
	}
	if patch.FileURL != nil {
		set("file_url", strings.TrimSpace(*patch.FileURL))
	}
	if patch.DurationSeconds != nil {
		set("duration_seconds", *patch.DurationSeconds)
	}
	if patch.TrackNumber != nil {
		set("track_number", *patch.TrackNumber)
	}

	var td TrackDetail
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id FROM tracks WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if apperr.NoRows(err) {
			return apperr.NotFound("track")
		}
		if err != nil {
			return err
		}

		if albumID != "" {
			ok, err := exists(ctx, tx, "albums", albumID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFound("album")
			}
		}

		args = append(args, id)
		if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE tracks SET %s WHERE id = $%d`,
			strings.Join(sets, ", "), len(args)), args...); err != nil {
			return err
		}

		td, err = loadTrackDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("update track", err)
	}
	return &td, nil
}

// DeleteTrack removes the track together with its playlist entries and
// favorites.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	if err := store.CheckID("track", id); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore("delete track", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("track")
	}
	return nil
}

// MostPopular lists tracks by play count, ties broken by id.
func (s *Store) MostPopular(ctx context.Context, limit int) ([]TrackDetail, error) {
	if limit < 0 {
		return nil, apperr.Validation("limit", "limit must be non-negative")
	}
	rows, err := s.db.Query(ctx, `SELECT `+TrackDetailColumns+TrackDetailFrom+`
		ORDER BY t.play_count DESC, t.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperr.FromStore("most popular", err)
	}
	tracks, err := CollectTrackDetails(rows)
	if err != nil {
		return nil, apperr.FromStore("most popular", err)
	}
	return tracks, nil
}

// RecordPlay increments the play count in one statement and returns the
// new value.
func (s *Store) RecordPlay(ctx context.Context, id string) (int64, error) {
	if err := store.CheckID("track", id); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.QueryRow(ctx, `
		UPDATE tracks SET play_count = play_count + 1
		WHERE id = $1
		RETURNING play_count
	`, id).Scan(&count)
	if apperr.NoRows(err) {
		return 0, apperr.NotFound("track")
	}
	if err != nil {
		return 0, apperr.FromStore("record play", err)
	}
	return count, nil
}

// ListTracksByAlbum orders by track number (unnumbered last), then title.
func (s *Store) ListTracksByAlbum(ctx context.Context, albumID string) ([]TrackDetail, error) {
	if err := store.CheckID("album", albumID); err != nil {
		return nil, err
	}

	var tracks []TrackDetail
	err := store.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		ok, err := exists(ctx, tx, "albums", albumID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("album")
		}
		rows, err := tx.Query(ctx, `SELECT `+TrackDetailColumns+TrackDetailFrom+`
			WHERE t.album_id = $1
			ORDER BY t.track_number ASC NULLS LAST, t.title ASC, t.id ASC`, albumID)
		if err != nil {
			return err
		}
		tracks, err = CollectTrackDetails(rows)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("list album tracks", err)
	}
	return tracks, nil
}
