package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"music-platform/internal/identity"
	"music-platform/internal/session"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.Register(r.Context(), body.Name, body.Email, body.Password))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.Login(r.Context(), body.Email, body.Password))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.Profile(r.Context(), session.Principal(r.Context())))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.UpdateProfile(r.Context(), session.Principal(r.Context()), identity.ProfilePatch{
		Name:  body.Name,
		Email: body.Email,
	}))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, s.platform.ChangePassword(r.Context(), session.Principal(r.Context()), body.Current, body.New))
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.Deactivate(r.Context(), session.Principal(r.Context())))
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.ListFavorites(r.Context(), session.Principal(r.Context())))
}

func (s *Server) handleIsFavorite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.IsFavorite(r.Context(), session.Principal(r.Context()), chi.URLParam(r, "trackId")))
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.AddFavorite(r.Context(), session.Principal(r.Context()), chi.URLParam(r, "trackId")))
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.platform.RemoveFavorite(r.Context(), session.Principal(r.Context()), chi.URLParam(r, "trackId")))
}
