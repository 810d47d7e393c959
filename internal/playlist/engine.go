// Package playlist enforces playlist ownership, visibility and the ordering
// of tracks inside a playlist.
package playlist

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/catalog"
	"music-platform/internal/store"
	"music-platform/internal/validate"
)

type Engine struct {
	db store.DB
}

func NewEngine(db store.DB) *Engine {
	return &Engine{db: db}
}

const playlistColumns = `
	p.id, p.owner_id, p.name, p.description, p.is_public, p.created_at,
	COUNT(e.id), COALESCE(SUM(t.duration_seconds), 0)`

const playlistFrom = `
	FROM playlists p
	LEFT JOIN playlist_entries e ON e.playlist_id = p.id
	LEFT JOIN tracks t ON t.id = e.track_id`

func scanPlaylist(row pgx.Row) (Playlist, error) {
	var p Playlist
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.IsPublic,
		&p.CreatedAt,
		&p.TotalTracks,
		&p.TotalDuration,
	)
	return p, err
}

func collectPlaylists(rows pgx.Rows) ([]Playlist, error) {
	defer rows.Close()
	out := make([]Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const entryColumns = catalog.TrackDetailColumns + `, e.position, e.added_at`

const entryFrom = catalog.TrackDetailFrom + `
	JOIN playlist_entries e ON e.track_id = t.id`

func scanEntry(row pgx.Row, extra ...any) (Entry, error) {
	var e Entry
	td, err := catalog.ScanTrackDetail(row, append([]any{&e.Position, &e.AddedAt}, extra...)...)
	e.TrackDetail = td
	return e, err
}

func loadPlaylist(ctx context.Context, q store.Querier, id string) (Playlist, error) {
	p, err := scanPlaylist(q.QueryRow(ctx, `SELECT `+playlistColumns+playlistFrom+`
		WHERE p.id = $1
		GROUP BY p.id`, id))
	if apperr.NoRows(err) {
		return Playlist{}, apperr.NotFound("playlist")
	}
	return p, err
}

func loadEntries(ctx context.Context, q store.Querier, playlistID string) ([]Entry, error) {
	rows, err := q.Query(ctx, `SELECT `+entryColumns+entryFrom+`
		WHERE e.playlist_id = $1
		ORDER BY e.position ASC`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// lockOwned locks the playlist row for the rest of the transaction and
// checks that requesterID owns it. Every membership change goes through
// here, which serializes them per playlist.
func lockOwned(ctx context.Context, tx pgx.Tx, playlistID, requesterID string) error {
	var ownerID string
	err := tx.QueryRow(ctx, `SELECT owner_id FROM playlists WHERE id = $1 FOR UPDATE`, playlistID).Scan(&ownerID)
	if apperr.NoRows(err) {
		return apperr.NotFound("playlist")
	}
	if err != nil {
		return err
	}
	if requesterID == "" || requesterID != ownerID {
		return apperr.AccessDenied()
	}
	return nil
}

func canRead(p Playlist, requesterID string) bool {
	return p.IsPublic || (requesterID != "" && requesterID == p.OwnerID)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var("name", name, "min=3"); err != nil {
		return "", err
	}
	return name, nil
}

func cleanDescription(d *string) *string {
	if d == nil {
		return nil
	}
	v := strings.TrimSpace(*d)
	if v == "" {
		return nil
	}
	return &v
}
