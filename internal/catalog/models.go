package catalog

import "time"

// Artist owns its albums. TotalAlbums and TotalTracks are filled by reads.
type Artist struct {
	ID          string
	Name        string
	Genre       *string
	Bio         *string
	ImageURL    *string
	CreatedAt   time.Time
	TotalAlbums int
	TotalTracks int
}

// Album owns its tracks. ArtistName and the totals are filled by reads.
type Album struct {
	ID            string
	Title         string
	ArtistID      string
	ArtistName    string
	ReleaseYear   *int
	CoverURL      *string
	Description   *string
	CreatedAt     time.Time
	TotalTracks   int
	TotalDuration int
}

type Track struct {
	ID              string
	Title           string
	AlbumID         string
	DurationSeconds *int
	FileURL         string
	TrackNumber     *int
	PlayCount       int64
	CreatedAt       time.Time
}

// TrackDetail is a track joined with its album and artist.
type TrackDetail struct {
	Track
	AlbumTitle string
	AlbumCover *string
	ArtistID   string
	ArtistName string
}

type NewArtist struct {
	Name     string `json:"name" validate:"notblank"`
	Genre    *string
	Bio      *string
	ImageURL *string
}

type NewAlbum struct {
	Title       string `json:"title" validate:"notblank"`
	ArtistID    string `json:"artist_id" validate:"notblank"`
	ReleaseYear *int
	CoverURL    *string
	Description *string
}

type NewTrack struct {
	Title           string `json:"title" validate:"notblank"`
	AlbumID         string `json:"album_id" validate:"notblank"`
	FileURL         string `json:"file_url" validate:"notblank"`
	DurationSeconds *int   `json:"duration_seconds" validate:"omitnil,min=0"`
	TrackNumber     *int   `json:"track_number" validate:"omitnil,min=1"`
}

// TrackPatch carries a partial update; nil fields are left unchanged.
type TrackPatch struct {
	Title           *string `json:"title" validate:"omitnil,notblank"`
	AlbumID         *string `json:"album_id" validate:"omitnil,notblank"`
	FileURL         *string `json:"file_url" validate:"omitnil,notblank"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitnil,min=0"`
	TrackNumber     *int    `json:"track_number" validate:"omitnil,min=1"`
}

func (p TrackPatch) empty() bool {
	return p.Title == nil && p.AlbumID == nil && p.FileURL == nil &&
		p.DurationSeconds == nil && p.TrackNumber == nil
}
