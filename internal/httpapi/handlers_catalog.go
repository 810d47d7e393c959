package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-platform/internal/catalog"
)

func (s *Server) handleSearchTracks(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	writeResult(w, s.platform.SearchTracks(r.Context(), r.URL.Query().Get("q"), limit, offset))
}

func (s *Server) handlePopularTracks(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	writeResult(w, s.platform.PopularTracks(r.Context(), limit))
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.GetTrack(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleRecordPlay(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.RecordPlay(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleCreateTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title           string `json:"title"`
		AlbumID         string `json:"album_id"`
		FileURL         string `json:"file_url"`
		DurationSeconds *int   `json:"duration_seconds"`
		TrackNumber     *int   `json:"track_number"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.CreateTrack(r.Context(), catalog.NewTrack{
		Title:           body.Title,
		AlbumID:         body.AlbumID,
		FileURL:         body.FileURL,
		DurationSeconds: body.DurationSeconds,
		TrackNumber:     body.TrackNumber,
	}))
}

func (s *Server) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title           *string `json:"title"`
		AlbumID         *string `json:"album_id"`
		FileURL         *string `json:"file_url"`
		DurationSeconds *int    `json:"duration_seconds"`
		TrackNumber     *int    `json:"track_number"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.UpdateTrack(r.Context(), chi.URLParam(r, "id"), catalog.TrackPatch{
		Title:           body.Title,
		AlbumID:         body.AlbumID,
		FileURL:         body.FileURL,
		DurationSeconds: body.DurationSeconds,
		TrackNumber:     body.TrackNumber,
	}))
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.DeleteTrack(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string  `json:"name"`
		Genre    *string `json:"genre"`
		Bio      *string `json:"bio"`
		ImageURL *string `json:"image"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.CreateArtist(r.Context(), catalog.NewArtist{
		Name:     body.Name,
		Genre:    body.Genre,
		Bio:      body.Bio,
		ImageURL: body.ImageURL,
	}))
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.GetArtist(r.Context(), chi.URLParam(r, "id"), queryBool(r, "include_albums")))
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.DeleteArtist(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string  `json:"title"`
		ArtistID    string  `json:"artist_id"`
		ReleaseYear *int    `json:"release_year"`
		CoverURL    *string `json:"cover"`
		Description *string `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.CreateAlbum(r.Context(), catalog.NewAlbum{
		Title:       body.Title,
		ArtistID:    body.ArtistID,
		ReleaseYear: body.ReleaseYear,
		CoverURL:    body.CoverURL,
		Description: body.Description,
	}))
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.GetAlbum(r.Context(), chi.URLParam(r, "id"), queryBool(r, "include_tracks")))
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.DeleteAlbum(r.Context(), chi.URLParam(r, "id")))
}
