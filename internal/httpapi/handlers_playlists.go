package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-platform/internal/playlist"
	"music-platform/internal/session"
)

func (s *Server) handleListPublicPlaylists(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	writeResult(w, s.platform.ListPublicPlaylists(r.Context(), limit))
}

func (s *Server) handleListOwnedPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := session.Principal(r.Context())
	writeResult(w, s.platform.ListOwnedPlaylists(r.Context(), userID, queryBool(r, "include_tracks")))
}

// handleGetPlaylist includes tracks unless include_tracks=false. Anonymous
// callers only see public playlists.
func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	include := true
	if r.URL.Query().Get("include_tracks") != "" {
		include = queryBool(r, "include_tracks")
	}
	writeResult(w, s.platform.GetPlaylist(r.Context(), chi.URLParam(r, "id"), session.Principal(r.Context()), include))
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsPublic    bool    `json:"is_public"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.CreatePlaylist(r.Context(), session.Principal(r.Context()), body.Name, body.Description, body.IsPublic))
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.UpdatePlaylist(r.Context(), chi.URLParam(r, "id"), session.Principal(r.Context()), playlist.Patch{
		Name:        body.Name,
		Description: body.Description,
		IsPublic:    body.IsPublic,
	}))
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.DeletePlaylist(r.Context(), chi.URLParam(r, "id"), session.Principal(r.Context())))
}

// handleAddPlaylistTrack accepts an optional {"position": n} body.
func (s *Server) handleAddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position *int `json:"position"`
	}
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &body) {
			return
		}
	}
	writeResult(w, s.platform.AddTrackToPlaylist(r.Context(),
		chi.URLParam(r, "id"),
		session.Principal(r.Context()),
		chi.URLParam(r, "trackId"),
		body.Position,
	))
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.RemoveTrackFromPlaylist(r.Context(),
		chi.URLParam(r, "id"),
		session.Principal(r.Context()),
		chi.URLParam(r, "trackId"),
	))
}
