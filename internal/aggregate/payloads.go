package aggregate

import (
	"fmt"
	"time"

	"music-platform/internal/catalog"
	"music-platform/internal/identity"
	"music-platform/internal/playlist"
)

type AlbumRef struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Cover *string `json:"cover"`
}

type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TrackPayload struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	DurationSeconds   *int      `json:"duration_seconds"`
	DurationFormatted string    `json:"duration_formatted"`
	FileURL           string    `json:"file_url"`
	TrackNumber       *int      `json:"track_number"`
	PlayCount         int64     `json:"play_count"`
	Album             AlbumRef  `json:"album"`
	Artist            ArtistRef `json:"artist"`
	CreatedAt         time.Time `json:"created_at"`
}

type PlaylistTrackPayload struct {
	TrackPayload
	Position int       `json:"position"`
	AddedAt  time.Time `json:"added_at"`
}

type AlbumPayload struct {
	ID                     string         `json:"id"`
	Title                  string         `json:"title"`
	ReleaseYear            *int           `json:"release_year"`
	Cover                  *string        `json:"cover"`
	Description            *string        `json:"description"`
	Artist                 ArtistRef      `json:"artist"`
	TotalTracks            int            `json:"total_tracks"`
	TotalDuration          int            `json:"total_duration"`
	TotalDurationFormatted string         `json:"total_duration_formatted"`
	CreatedAt              time.Time      `json:"created_at"`
	Tracks                 []TrackPayload `json:"tracks,omitzero"`
}

type ArtistPayload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Genre       *string        `json:"genre"`
	Bio         *string        `json:"bio"`
	Image       *string        `json:"image"`
	TotalAlbums int            `json:"total_albums"`
	TotalTracks int            `json:"total_tracks"`
	CreatedAt   time.Time      `json:"created_at"`
	Albums      []AlbumPayload `json:"albums,omitzero"`
}

type PlaylistPayload struct {
	ID                     string                 `json:"id"`
	OwnerID                string                 `json:"owner_id"`
	Name                   string                 `json:"name"`
	Description            *string                `json:"description"`
	IsPublic               bool                   `json:"is_public"`
	CreatedAt              time.Time              `json:"created_at"`
	TotalTracks            int                    `json:"total_tracks"`
	TotalDuration          int                    `json:"total_duration"`
	TotalDurationFormatted string                 `json:"total_duration_formatted"`
	Tracks                 []PlaylistTrackPayload `json:"tracks,omitzero"`
}

type UserPayload struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	TotalPlaylists int       `json:"total_playlists"`
	TotalFavorites int       `json:"total_favorites"`
}

// FormatDuration renders seconds as MM:SS; minutes are not capped at 59.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func TrackPayloadOf(td catalog.TrackDetail) TrackPayload {
	formatted := FormatDuration(0)
	if td.DurationSeconds != nil {
		formatted = FormatDuration(*td.DurationSeconds)
	}
	return TrackPayload{
		ID:                td.ID,
		Title:             td.Title,
		DurationSeconds:   td.DurationSeconds,
		DurationFormatted: formatted,
		FileURL:           td.FileURL,
		TrackNumber:       td.TrackNumber,
		PlayCount:         td.PlayCount,
		Album:             AlbumRef{ID: td.AlbumID, Title: td.AlbumTitle, Cover: td.AlbumCover},
		Artist:            ArtistRef{ID: td.ArtistID, Name: td.ArtistName},
		CreatedAt:         td.CreatedAt,
	}
}

func TrackPayloads(tds []catalog.TrackDetail) []TrackPayload {
	out := make([]TrackPayload, 0, len(tds))
	for _, td := range tds {
		out = append(out, TrackPayloadOf(td))
	}
	return out
}

// AlbumPayloadOf uses the stored totals. When tracks is non-nil they are
// embedded and the totals are taken from them.
func AlbumPayloadOf(a catalog.Album, tracks []catalog.TrackDetail) AlbumPayload {
	p := AlbumPayload{
		ID:            a.ID,
		Title:         a.Title,
		ReleaseYear:   a.ReleaseYear,
		Cover:         a.CoverURL,
		Description:   a.Description,
		Artist:        ArtistRef{ID: a.ArtistID, Name: a.ArtistName},
		TotalTracks:   a.TotalTracks,
		TotalDuration: a.TotalDuration,
		CreatedAt:     a.CreatedAt,
	}
	if tracks != nil {
		p.Tracks = TrackPayloads(tracks)
		p.TotalTracks = len(tracks)
		p.TotalDuration = sumDurations(tracks)
	}
	p.TotalDurationFormatted = FormatDuration(p.TotalDuration)
	return p
}

func ArtistPayloadOf(a catalog.Artist, albums []catalog.Album) ArtistPayload {
	p := ArtistPayload{
		ID:          a.ID,
		Name:        a.Name,
		Genre:       a.Genre,
		Bio:         a.Bio,
		Image:       a.ImageURL,
		TotalAlbums: a.TotalAlbums,
		TotalTracks: a.TotalTracks,
		CreatedAt:   a.CreatedAt,
	}
	if albums != nil {
		p.Albums = make([]AlbumPayload, 0, len(albums))
		for _, al := range albums {
			p.Albums = append(p.Albums, AlbumPayloadOf(al, nil))
		}
	}
	return p
}

// PlaylistPayloadOf embeds the ordered tracks when the playlist was loaded
// with its entries.
func PlaylistPayloadOf(p playlist.Playlist) PlaylistPayload {
	out := PlaylistPayload{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Description:   p.Description,
		IsPublic:      p.IsPublic,
		CreatedAt:     p.CreatedAt,
		TotalTracks:   p.TotalTracks,
		TotalDuration: p.TotalDuration,
	}
	if p.Entries != nil {
		out.Tracks = make([]PlaylistTrackPayload, 0, len(p.Entries))
		total := 0
		for _, e := range p.Entries {
			out.Tracks = append(out.Tracks, EntryPayloadOf(e))
			if e.DurationSeconds != nil {
				total += *e.DurationSeconds
			}
		}
		out.TotalTracks = len(p.Entries)
		out.TotalDuration = total
	}
	out.TotalDurationFormatted = FormatDuration(out.TotalDuration)
	return out
}

func PlaylistPayloads(ps []playlist.Playlist) []PlaylistPayload {
	out := make([]PlaylistPayload, 0, len(ps))
	for _, p := range ps {
		out = append(out, PlaylistPayloadOf(p))
	}
	return out
}

func EntryPayloadOf(e playlist.Entry) PlaylistTrackPayload {
	return PlaylistTrackPayload{
		TrackPayload: TrackPayloadOf(e.TrackDetail),
		Position:     e.Position,
		AddedAt:      e.AddedAt,
	}
}

// UserPayloadOf never includes the password hash.
func UserPayloadOf(u identity.User) UserPayload {
	return UserPayload{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
		TotalPlaylists: u.TotalPlaylists,
		TotalFavorites: u.TotalFavorites,
	}
}

func sumDurations(tds []catalog.TrackDetail) int {
	total := 0
	for _, td := range tds {
		if td.DurationSeconds != nil {
			total += *td.DurationSeconds
		}
	}
	return total
}
