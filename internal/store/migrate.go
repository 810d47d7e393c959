package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS artists (
		id          uuid PRIMARY KEY,
		name        TEXT NOT NULL,
		genre       TEXT,
		bio         TEXT,
		image_url   TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name)`,

	`CREATE TABLE IF NOT EXISTS albums (
		id           uuid PRIMARY KEY,
		title        TEXT NOT NULL,
		artist_id    uuid NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
		release_year INT,
		cover_url    TEXT,
		description  TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_albums_title ON albums(title)`,
	`CREATE INDEX IF NOT EXISTS idx_albums_artist ON albums(artist_id)`,

	`CREATE TABLE IF NOT EXISTS tracks (
		id               uuid PRIMARY KEY,
		title            TEXT NOT NULL,
		album_id         uuid NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
		duration_seconds INT CHECK (duration_seconds IS NULL OR duration_seconds >= 0),
		file_url         TEXT NOT NULL,
		track_number     INT,
		play_count       BIGINT NOT NULL DEFAULT 0 CHECK (play_count >= 0),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_title ON tracks(title)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tracks_play_count ON tracks(play_count DESC, id)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            uuid PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		role          TEXT NOT NULL DEFAULT 'listener',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS role TEXT NOT NULL DEFAULT 'listener'`,

	`CREATE TABLE IF NOT EXISTS favorites (
		user_id   uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		track_id  uuid NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		added_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, track_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_favorites_track ON favorites(track_id)`,

	`CREATE TABLE IF NOT EXISTS playlists (
		id          uuid PRIMARY KEY,
		owner_id    uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT,
		is_public   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlists_owner ON playlists(owner_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_playlists_public ON playlists(created_at DESC) WHERE is_public`,

	// position uniqueness is deferrable so a shift of a whole range is
	// checked once at the end of the statement.
	`CREATE TABLE IF NOT EXISTS playlist_entries (
		id          uuid PRIMARY KEY,
		playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		track_id    uuid NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		position    INT NOT NULL CHECK (position > 0),
		added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_playlist_entries_track UNIQUE (playlist_id, track_id),
		CONSTRAINT uq_playlist_entries_position UNIQUE (playlist_id, position) DEFERRABLE INITIALLY IMMEDIATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlist_entries_track ON playlist_entries(track_id)`,
}

// AutoMigrate creates the schema if it does not exist yet. It is safe to
// run on every start.
func AutoMigrate(ctx context.Context, db Querier) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}

// Truncate empties every table. Used by integration tests.
func Truncate(ctx context.Context, db Querier) error {
	_, err := db.Exec(ctx, `TRUNCATE playlist_entries, playlists, favorites, users, tracks, albums, artists`)
	return err
}
