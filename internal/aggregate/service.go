// Package aggregate is the entry point callers use. It composes the catalog,
// identity and playlist components into denormalized payloads and turns every
// outcome into a tagged Result.
package aggregate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"music-platform/internal/apperr"
	"music-platform/internal/catalog"
	"music-platform/internal/events"
	"music-platform/internal/identity"
	"music-platform/internal/playlist"
)

type Catalog interface {
	Search(ctx context.Context, term string, limit, offset int) ([]catalog.TrackDetail, int, error)
	GetTrack(ctx context.Context, id string) (*catalog.TrackDetail, error)
	CreateTrack(ctx context.Context, in catalog.NewTrack) (*catalog.TrackDetail, error)
	UpdateTrack(ctx context.Context, id string, patch catalog.TrackPatch) (*catalog.TrackDetail, error)
	DeleteTrack(ctx context.Context, id string) error
	MostPopular(ctx context.Context, limit int) ([]catalog.TrackDetail, error)
	RecordPlay(ctx context.Context, id string) (int64, error)
	ListTracksByAlbum(ctx context.Context, albumID string) ([]catalog.TrackDetail, error)

	CreateArtist(ctx context.Context, in catalog.NewArtist) (*catalog.Artist, error)
	GetArtist(ctx context.Context, id string) (*catalog.Artist, error)
	DeleteArtist(ctx context.Context, id string) error
	ListAlbumsByArtist(ctx context.Context, artistID string) ([]catalog.Album, error)

	CreateAlbum(ctx context.Context, in catalog.NewAlbum) (*catalog.Album, error)
	GetAlbum(ctx context.Context, id string) (*catalog.Album, error)
	DeleteAlbum(ctx context.Context, id string) error
}

type Identity interface {
	Register(ctx context.Context, name, email, password string) (*identity.User, error)
	Authenticate(ctx context.Context, email, password string) (*identity.User, error)
	GetUser(ctx context.Context, id string) (*identity.User, error)
	UpdateProfile(ctx context.Context, userID string, patch identity.ProfilePatch) (*identity.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	Deactivate(ctx context.Context, userID string) error
	AddFavorite(ctx context.Context, userID, trackID string) error
	RemoveFavorite(ctx context.Context, userID, trackID string) error
	IsFavorite(ctx context.Context, userID, trackID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]catalog.TrackDetail, error)
}

type Playlists interface {
	Create(ctx context.Context, ownerID, name string, description *string, isPublic bool) (*playlist.Playlist, error)
	Get(ctx context.Context, playlistID, requesterID string) (*playlist.Playlist, error)
	GetWithTracks(ctx context.Context, playlistID, requesterID string) (*playlist.Playlist, error)
	Update(ctx context.Context, playlistID, requesterID string, patch playlist.Patch) (*playlist.Playlist, error)
	Delete(ctx context.Context, playlistID, requesterID string) error
	AddTrack(ctx context.Context, playlistID, requesterID, trackID string, position *int) (*playlist.Entry, error)
	RemoveTrack(ctx context.Context, playlistID, requesterID, trackID string) error
	ListPublic(ctx context.Context, limit int) ([]playlist.Playlist, error)
	ListOwned(ctx context.Context, ownerID string, includeTracks bool) ([]playlist.Playlist, error)
}

// TokenIssuer hands out session tokens on login.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// Paging bounds the limits callers ask for.
type Paging struct {
	Default int
	Max     int
}

func (p Paging) clamp(limit int) int {
	switch {
	case limit == 0:
		return p.Default
	case p.Max > 0 && limit > p.Max:
		return p.Max
	}
	return limit
}

type Service struct {
	catalog   Catalog
	identity  Identity
	playlists Playlists
	tokens    TokenIssuer
	events    events.Publisher
	paging    Paging
	log       *zap.Logger
}

type Options struct {
	Tokens TokenIssuer
	Events events.Publisher
	Paging Paging
	Logger *zap.Logger
}

func NewService(c Catalog, i Identity, p Playlists, opts Options) *Service {
	s := &Service{
		catalog:   c,
		identity:  i,
		playlists: p,
		tokens:    opts.Tokens,
		events:    opts.Events,
		paging:    opts.Paging,
		log:       opts.Logger,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.paging.Default <= 0 {
		s.paging.Default = 20
	}
	return s
}

// fail converts err into a failed Result. Unexpected errors are logged with
// their cause; the caller only sees the sanitized message.
func (s *Service) fail(op string, err error) Result {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		s.log.Error(op, zap.Error(err))
	}
	r := Result{Success: false, Kind: kind, Message: apperr.Message(err)}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		r.Field = ae.Field
	}
	return r
}

func (s *Service) publish(ctx context.Context, eventType string, payload map[string]any) {
	s.events.Publish(ctx, eventType, payload)
}
