// Package catalog is the artist, album and track store.
package catalog

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
)

type Store struct {
	db     store.DB
	albums *lru.Cache[string, albumRef]
}

// albumRef is the album and artist half of a TrackDetail. Albums and artists
// are never edited in place, so a ref only goes stale when its album is
// deleted, and by then no track points at it.
type albumRef struct {
	Title      string
	Cover      *string
	ArtistID   string
	ArtistName string
}

// NewStore builds a catalog store. A positive cacheSize enables a per-process
// cache of album refs used by GetTrack. Track rows themselves are always read
// from the database.
func NewStore(db store.DB, cacheSize int) (*Store, error) {
	s := &Store{db: db}
	if cacheSize > 0 {
		c, err := lru.New[string, albumRef](cacheSize)
		if err != nil {
			return nil, err
		}
		s.albums = c
	}
	return s, nil
}

func (s *Store) forgetAlbum(id string) {
	if s.albums != nil {
		s.albums.Remove(id)
	}
}

func (s *Store) forgetAlbums() {
	if s.albums != nil {
		s.albums.Purge()
	}
}

func (s *Store) albumRef(ctx context.Context, albumID string) (albumRef, error) {
	if ref, ok := s.albums.Get(albumID); ok {
		return ref, nil
	}
	var ref albumRef
	err := s.db.QueryRow(ctx, `
		SELECT al.title, al.cover_url, ar.id, ar.name
		FROM albums al
		JOIN artists ar ON ar.id = al.artist_id
		WHERE al.id = $1
	`, albumID).Scan(&ref.Title, &ref.Cover, &ref.ArtistID, &ref.ArtistName)
	if err != nil {
		return albumRef{}, err
	}
	s.albums.Add(albumID, ref)
	return ref, nil
}

// TrackDetailColumns and TrackDetailFrom select a track joined with its album
// and artist. Other stores extend the FROM clause with their own tables.
const TrackDetailColumns = `
	t.id, t.title, t.album_id, t.duration_seconds, t.file_url, t.track_number,
	t.play_count, t.created_at, al.title, al.cover_url, ar.id, ar.name`

const TrackDetailFrom = `
	FROM tracks t
	JOIN albums al ON al.id = t.album_id
	JOIN artists ar ON ar.id = al.artist_id`

// ScanTrackDetail scans TrackDetailColumns followed by any extra columns.
func ScanTrackDetail(row pgx.Row, extra ...any) (TrackDetail, error) {
	var td TrackDetail
	dest := append([]any{
		&td.ID,
		&td.Title,
		&td.AlbumID,
		&td.DurationSeconds,
		&td.FileURL,
		&td.TrackNumber,
		&td.PlayCount,
		&td.CreatedAt,
		&td.AlbumTitle,
		&td.AlbumCover,
		&td.ArtistID,
		&td.ArtistName,
	}, extra...)
	err := row.Scan(dest...)
	return td, err
}

// CollectTrackDetails drains rows of TrackDetailColumns and closes them.
func CollectTrackDetails(rows pgx.Rows) ([]TrackDetail, error) {
	defer rows.Close()
	out := make([]TrackDetail, 0)
	for rows.Next() {
		td, err := ScanTrackDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, rows.Err()
}

func loadTrackDetail(ctx context.Context, q store.Querier, id string) (TrackDetail, error) {
	td, err := ScanTrackDetail(q.QueryRow(ctx, `SELECT `+TrackDetailColumns+TrackDetailFrom+`
		WHERE t.id = $1`, id))
	if apperr.NoRows(err) {
		return TrackDetail{}, apperr.NotFound("track")
	}
	return td, err
}

func exists(ctx context.Context, q store.Querier, table, id string) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}
