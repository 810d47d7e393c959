// Package httpapi exposes the platform over JSON/HTTP. Handlers only decode
// input and write the Result the aggregation layer returns.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"music-platform/internal/aggregate"
	"music-platform/internal/catalog"
	"music-platform/internal/identity"
	"music-platform/internal/logging"
	"music-platform/internal/playlist"
	"music-platform/internal/session"
)

// Platform is the set of operations the routes call; *aggregate.Service
// implements it.
type Platform interface {
	SearchTracks(ctx context.Context, term string, limit, offset int) aggregate.Result
	GetTrack(ctx context.Context, id string) aggregate.Result
	CreateTrack(ctx context.Context, in catalog.NewTrack) aggregate.Result
	UpdateTrack(ctx context.Context, id string, patch catalog.TrackPatch) aggregate.Result
	DeleteTrack(ctx context.Context, id string) aggregate.Result
	PopularTracks(ctx context.Context, limit int) aggregate.Result
	RecordPlay(ctx context.Context, id string) aggregate.Result
	CreateArtist(ctx context.Context, in catalog.NewArtist) aggregate.Result
	GetArtist(ctx context.Context, id string, includeAlbums bool) aggregate.Result
	DeleteArtist(ctx context.Context, id string) aggregate.Result
	CreateAlbum(ctx context.Context, in catalog.NewAlbum) aggregate.Result
	GetAlbum(ctx context.Context, id string, includeTracks bool) aggregate.Result
	DeleteAlbum(ctx context.Context, id string) aggregate.Result

	Register(ctx context.Context, name, email, password string) aggregate.Result
	Login(ctx context.Context, email, password string) aggregate.Result
	Profile(ctx context.Context, userID string) aggregate.Result
	UpdateProfile(ctx context.Context, userID string, patch identity.ProfilePatch) aggregate.Result
	ChangePassword(ctx context.Context, userID, current, next string) aggregate.Result
	Deactivate(ctx context.Context, userID string) aggregate.Result
	AddFavorite(ctx context.Context, userID, trackID string) aggregate.Result
	RemoveFavorite(ctx context.Context, userID, trackID string) aggregate.Result
	IsFavorite(ctx context.Context, userID, trackID string) aggregate.Result
	ListFavorites(ctx context.Context, userID string) aggregate.Result

	CreatePlaylist(ctx context.Context, ownerID, name string, description *string, isPublic bool) aggregate.Result
	GetPlaylist(ctx context.Context, playlistID, requesterID string, includeTracks bool) aggregate.Result
	UpdatePlaylist(ctx context.Context, playlistID, requesterID string, patch playlist.Patch) aggregate.Result
	DeletePlaylist(ctx context.Context, playlistID, requesterID string) aggregate.Result
	AddTrackToPlaylist(ctx context.Context, playlistID, requesterID, trackID string, position *int) aggregate.Result
	RemoveTrackFromPlaylist(ctx context.Context, playlistID, requesterID, trackID string) aggregate.Result
	ListPublicPlaylists(ctx context.Context, limit int) aggregate.Result
	ListOwnedPlaylists(ctx context.Context, ownerID string, includeTracks bool) aggregate.Result
}

var _ Platform = (*aggregate.Service)(nil)

type Options struct {
	MaxBodyBytes      int64
	CORSAllowedOrigin string
}

type Server struct {
	platform Platform
	sessions *session.Issuer
	log      *zap.Logger
	opts     Options
}

func NewServer(p Platform, sessions *session.Issuer, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.CORSAllowedOrigin == "" {
		opts.CORSAllowedOrigin = "*"
	}
	return &Server{platform: p, sessions: sessions, log: log, opts: opts}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.opts.CORSAllowedOrigin))
	r.Use(middleware.RequestSize(s.opts.MaxBodyBytes))
	r.Use(s.sessions.Middleware)

	r.Get("/health", s.handleHealth)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Get("/tracks", s.handleSearchTracks)
	r.Get("/tracks/popular", s.handlePopularTracks)
	r.Get("/tracks/{id}", s.handleGetTrack)
	r.Post("/tracks/{id}/play", s.handleRecordPlay)
	r.Get("/artists/{id}", s.handleGetArtist)
	r.Get("/albums/{id}", s.handleGetAlbum)

	r.Get("/playlists/public", s.handleListPublicPlaylists)
	r.Get("/playlists/{id}", s.handleGetPlaylist)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireAdmin)

		r.Post("/tracks", s.handleCreateTrack)
		r.Patch("/tracks/{id}", s.handleUpdateTrack)
		r.Delete("/tracks/{id}", s.handleDeleteTrack)
		r.Post("/artists", s.handleCreateArtist)
		r.Delete("/artists/{id}", s.handleDeleteArtist)
		r.Post("/albums", s.handleCreateAlbum)
		r.Delete("/albums/{id}", s.handleDeleteAlbum)
	})

	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth)

		r.Get("/users/me", s.handleProfile)
		r.Patch("/users/me", s.handleUpdateProfile)
		r.Delete("/users/me", s.handleDeactivate)
		r.Post("/users/me/password", s.handleChangePassword)
		r.Get("/users/me/favorites", s.handleListFavorites)
		r.Get("/users/me/favorites/{trackId}", s.handleIsFavorite)
		r.Post("/users/me/favorites/{trackId}", s.handleAddFavorite)
		r.Delete("/users/me/favorites/{trackId}", s.handleRemoveFavorite)

		r.Get("/playlists", s.handleListOwnedPlaylists)
		r.Post("/playlists", s.handleCreatePlaylist)
		r.Patch("/playlists/{id}", s.handleUpdatePlaylist)
		r.Delete("/playlists/{id}", s.handleDeletePlaylist)
		r.Post("/playlists/{id}/tracks/{trackId}", s.handleAddPlaylistTrack)
		r.Delete("/playlists/{id}/tracks/{trackId}", s.handleRemovePlaylistTrack)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "music-platform",
	})
}
