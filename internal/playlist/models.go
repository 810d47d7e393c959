package playlist

import (
	"time"

	"music-platform/internal/catalog"
)

// Playlist metadata plus membership totals. Entries is only filled by the
// calls that ask for tracks.
type Playlist struct {
	ID            string
	OwnerID       string
	Name          string
	Description   *string
	IsPublic      bool
	CreatedAt     time.Time
	TotalTracks   int
	TotalDuration int
	Entries       []Entry
}

// Entry is a track's membership in a playlist. Entries are ordered by
// Position ascending; positions may have gaps.
type Entry struct {
	catalog.TrackDetail
	Position int
	AddedAt  time.Time
}

type Patch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}
