package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"music-platform/internal/apperr"
	"music-platform/internal/store"
)

func (e *Engine) Create(ctx context.Context, ownerID, name string, description *string, isPublic bool) (*Playlist, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := store.CheckID("user", ownerID); err != nil {
		return nil, err
	}

	p := Playlist{
		ID:          store.NewID(),
		OwnerID:     ownerID,
		Name:        name,
		Description: cleanDescription(description),
		IsPublic:    isPublic,
	}
	err = store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		var ok bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, ownerID).Scan(&ok); err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("user")
		}
		return tx.QueryRow(ctx, `
			INSERT INTO playlists (id, owner_id, name, description, is_public)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`, p.ID, p.OwnerID, p.Name, p.Description, p.IsPublic).Scan(&p.CreatedAt)
	})
	if err != nil {
		return nil, apperr.FromStore("create playlist", err)
	}
	return &p, nil
}

// Get returns the playlist if requesterID may read it. Private playlists are
// readable by their owner only; an empty requesterID is anonymous.
func (e *Engine) Get(ctx context.Context, playlistID, requesterID string) (*Playlist, error) {
	if err := store.CheckID("playlist", playlistID); err != nil {
		return nil, err
	}
	p, err := loadPlaylist(ctx, e.db, playlistID)
	if err != nil {
		return nil, apperr.FromStore("get playlist", err)
	}
	if !canRead(p, requesterID) {
		return nil, apperr.AccessDenied()
	}
	return &p, nil
}

// GetWithTracks is Get plus the ordered entries, read in one transaction.
func (e *Engine) GetWithTracks(ctx context.Context, playlistID, requesterID string) (*Playlist, error) {
	if err := store.CheckID("playlist", playlistID); err != nil {
		return nil, err
	}

	var p Playlist
	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		var err error
		p, err = loadPlaylist(ctx, tx, playlistID)
		if err != nil {
			return err
		}
		if !canRead(p, requesterID) {
			return apperr.AccessDenied()
		}
		p.Entries, err = loadEntries(ctx, tx, playlistID)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("get playlist", err)
	}
	return &p, nil
}

func (e *Engine) Update(ctx context.Context, playlistID, requesterID string, patch Patch) (*Playlist, error) {
	if err := store.CheckID("playlist", playlistID); err != nil {
		return nil, err
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return nil, err
		}
		set("name", name)
	}
	if patch.Description != nil {
		set("description", cleanDescription(patch.Description))
	}
	if patch.IsPublic != nil {
		set("is_public", *patch.IsPublic)
	}

	var p Playlist
	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, playlistID, requesterID); err != nil {
			return err
		}
		if len(sets) > 0 {
			args = append(args, playlistID)
			if _, err := tx.Exec(ctx, fmt.Sprintf(`UPDATE playlists SET %s WHERE id = $%d`,
				strings.Join(sets, ", "), len(args)), args...); err != nil {
				return err
			}
		}
		var err error
		p, err = loadPlaylist(ctx, tx, playlistID)
		return err
	})
	if err != nil {
		return nil, apperr.FromStore("update playlist", err)
	}
	return &p, nil
}

// Delete removes the playlist and its entries.
func (e *Engine) Delete(ctx context.Context, playlistID, requesterID string) error {
	if err := store.CheckID("playlist", playlistID); err != nil {
		return err
	}
	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, playlistID, requesterID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, playlistID)
		return err
	})
	return apperr.FromStore("delete playlist", err)
}

// ListPublic returns public playlists, newest first.
func (e *Engine) ListPublic(ctx context.Context, limit int) ([]Playlist, error) {
	if limit < 0 {
		return nil, apperr.Validation("limit", "limit must be non-negative")
	}
	rows, err := e.db.Query(ctx, `SELECT `+playlistColumns+playlistFrom+`
		WHERE p.is_public
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperr.FromStore("list public playlists", err)
	}
	out, err := collectPlaylists(rows)
	if err != nil {
		return nil, apperr.FromStore("list public playlists", err)
	}
	return out, nil
}

// ListOwned returns the owner's playlists, newest first, optionally with
// their ordered entries.
func (e *Engine) ListOwned(ctx context.Context, ownerID string, includeTracks bool) ([]Playlist, error) {
	if err := store.CheckID("user", ownerID); err != nil {
		return nil, err
	}

	var out []Playlist
	err := store.WithTx(ctx, e.db, func(tx pgx.Tx) error {
		var ok bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, ownerID).Scan(&ok); err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("user")
		}

		rows, err := tx.Query(ctx, `SELECT `+playlistColumns+playlistFrom+`
			WHERE p.owner_id = $1
			GROUP BY p.id
			ORDER BY p.created_at DESC, p.id DESC`, ownerID)
		if err != nil {
			return err
		}
		if out, err = collectPlaylists(rows); err != nil {
			return err
		}
		if !includeTracks || len(out) == 0 {
			return nil
		}
		return attachEntries(ctx, tx, ownerID, out)
	})
	if err != nil {
		return nil, apperr.FromStore("list owned playlists", err)
	}
	return out, nil
}

func attachEntries(ctx context.Context, q store.Querier, ownerID string, playlists []Playlist) error {
	rows, err := q.Query(ctx, `SELECT `+entryColumns+`, e.playlist_id`+entryFrom+`
		JOIN playlists p ON p.id = e.playlist_id
		WHERE p.owner_id = $1
		ORDER BY e.playlist_id, e.position ASC`, ownerID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byPlaylist := make(map[string][]Entry, len(playlists))
	for rows.Next() {
		var playlistID string
		entry, err := scanEntry(rows, &playlistID)
		if err != nil {
			return err
		}
		byPlaylist[playlistID] = append(byPlaylist[playlistID], entry)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range playlists {
		entries := byPlaylist[playlists[i].ID]
		if entries == nil {
			entries = make([]Entry, 0)
		}
		playlists[i].Entries = entries
	}
	return nil
}
