package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"music-platform/internal/apperr"
	"music-platform/internal/catalog"
	"music-platform/internal/events"
	"music-platform/internal/identity"
	"music-platform/internal/playlist"
)

// Unset methods on the embedded interfaces panic, so each test only wires
// what it exercises.
type fakeCatalog struct {
	Catalog
	search     func(term string, limit, offset int) ([]catalog.TrackDetail, int, error)
	popular    func(limit int) ([]catalog.TrackDetail, error)
	recordPlay func(id string) (int64, error)
	getAlbum   func(id string) (*catalog.Album, error)
	byAlbum    func(id string) ([]catalog.TrackDetail, error)
	getTrack   func(id string) (*catalog.TrackDetail, error)
}

func (f fakeCatalog) Search(_ context.Context, term string, limit, offset int) ([]catalog.TrackDetail, int, error) {
	return f.search(term, limit, offset)
}

func (f fakeCatalog) MostPopular(_ context.Context, limit int) ([]catalog.TrackDetail, error) {
	return f.popular(limit)
}

func (f fakeCatalog) RecordPlay(_ context.Context, id string) (int64, error) {
	return f.recordPlay(id)
}

func (f fakeCatalog) GetAlbum(_ context.Context, id string) (*catalog.Album, error) {
	return f.getAlbum(id)
}

func (f fakeCatalog) ListTracksByAlbum(_ context.Context, id string) ([]catalog.TrackDetail, error) {
	return f.byAlbum(id)
}

func (f fakeCatalog) GetTrack(_ context.Context, id string) (*catalog.TrackDetail, error) {
	return f.getTrack(id)
}

type fakeIdentity struct {
	Identity
	authenticate func(email, password string) (*identity.User, error)
	addFavorite  func(userID, trackID string) error
}

func (f fakeIdentity) Authenticate(_ context.Context, email, password string) (*identity.User, error) {
	return f.authenticate(email, password)
}

func (f fakeIdentity) AddFavorite(_ context.Context, userID, trackID string) error {
	return f.addFavorite(userID, trackID)
}

type fakePlaylists struct {
	Playlists
	addTrack func(playlistID, requesterID, trackID string, position *int) (*playlist.Entry, error)
	getFull  func(playlistID, requesterID string) (*playlist.Playlist, error)
}

func (f fakePlaylists) AddTrack(_ context.Context, playlistID, requesterID, trackID string, position *int) (*playlist.Entry, error) {
	return f.addTrack(playlistID, requesterID, trackID, position)
}

func (f fakePlaylists) GetWithTracks(_ context.Context, playlistID, requesterID string) (*playlist.Playlist, error) {
	return f.getFull(playlistID, requesterID)
}

type recordedEvent struct {
	Type    string
	Payload any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(_ context.Context, eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{eventType, payload})
}

type fixedTokens struct{ err error }

func (f fixedTokens) Issue(userID string) (string, time.Time, error) {
	return "token-" + userID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), f.err
}

func TestSearchTracksClampsLimit(t *testing.T) {
	var gotLimit int
	svc := NewService(fakeCatalog{
		search: func(term string, limit, offset int) ([]catalog.TrackDetail, int, error) {
			gotLimit = limit
			assert.Equal(t, "floyd", term)
			return []catalog.TrackDetail{track("t-1", "Money", intPtr(382), 0)}, 41, nil
		},
	}, nil, nil, Options{Paging: Paging{Default: 20, Max: 100}})

	r := svc.SearchTracks(context.Background(), "floyd", 0, 40)
	require.True(t, r.Success)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 41, r.Page.Total)
	assert.Equal(t, 40, r.Page.Offset)

	r = svc.SearchTracks(context.Background(), "floyd", 500, 0)
	require.True(t, r.Success)
	assert.Equal(t, 100, gotLimit)
	assert.Equal(t, 100, r.Page.Limit)
}

func TestFailSanitizesUnexpected(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewService(fakeCatalog{
		popular: func(int) ([]catalog.TrackDetail, error) {
			return nil, apperr.FromStore("most popular", errors.New("dial tcp 10.0.0.5:5432: connection refused"))
		},
	}, nil, nil, Options{Logger: zap.New(core)})

	r := svc.PopularTracks(context.Background(), 10)
	assert.False(t, r.Success)
	assert.Equal(t, apperr.KindUnexpected, r.Kind)
	assert.Equal(t, "internal error", r.Message)
	assert.NotContains(t, r.Message, "10.0.0.5")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "popular tracks", entry.Message)
	assert.Contains(t, entry.ContextMap()["error"], "connection refused")
}

func TestFailCarriesValidationField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(fakeCatalog{
		search: func(string, int, int) ([]catalog.TrackDetail, int, error) {
			return nil, 0, apperr.Validation("offset", "offset must not be negative")
		},
	}, nil, nil, Options{Logger: zap.New(core)})

	r := svc.SearchTracks(context.Background(), "", 10, -1)
	assert.Equal(t, apperr.KindValidation, r.Kind)
	assert.Equal(t, "offset", r.Field)
	assert.Equal(t, 0, logs.Len(), "domain failures are not logged")
}

func TestRecordPlayPublishes(t *testing.T) {
	rec := &recorder{}
	svc := NewService(fakeCatalog{
		recordPlay: func(id string) (int64, error) { return 8, nil },
	}, nil, nil, Options{Events: rec})

	r := svc.RecordPlay(context.Background(), "t-1")
	require.True(t, r.Success)
	assert.EqualValues(t, 8, r.Data["play_count"])
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.TrackPlayed, rec.events[0].Type)
	assert.Equal(t, map[string]any{"trackId": "t-1", "playCount": int64(8)}, rec.events[0].Payload)
}

func TestNoEventOnFailure(t *testing.T) {
	rec := &recorder{}
	svc := NewService(nil, fakeIdentity{
		addFavorite: func(string, string) error { return apperr.NotFound("track") },
	}, nil, Options{Events: rec})

	r := svc.AddFavorite(context.Background(), "u-1", "missing")
	assert.Equal(t, apperr.KindNotFound, r.Kind)
	assert.Equal(t, "track not found", r.Message)
	assert.Empty(t, rec.events)
}

func TestLogin(t *testing.T) {
	user := &identity.User{ID: "u-1", Name: "Alice", Email: "alice@example.com", Active: true}
	ids := fakeIdentity{
		authenticate: func(email, password string) (*identity.User, error) {
			if password != "secret1" {
				return nil, apperr.InvalidCredentials()
			}
			return user, nil
		},
	}

	t.Run("IssuesToken", func(t *testing.T) {
		svc := NewService(nil, ids, nil, Options{Tokens: fixedTokens{}})
		r := svc.Login(context.Background(), "alice@example.com", "secret1")
		require.True(t, r.Success)
		assert.Equal(t, "token-u-1", r.Data["access_token"])
		assert.Equal(t, UserPayloadOf(*user), r.Data["user"])
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc := NewService(nil, ids, nil, Options{Tokens: fixedTokens{}})
		r := svc.Login(context.Background(), "alice@example.com", "nope")
		assert.Equal(t, apperr.KindInvalidCredentials, r.Kind)
		assert.NotContains(t, r.Data, "access_token")
	})

	t.Run("IssuerFailure", func(t *testing.T) {
		svc := NewService(nil, ids, nil, Options{Tokens: fixedTokens{err: errors.New("bad key")}})
		r := svc.Login(context.Background(), "alice@example.com", "secret1")
		assert.Equal(t, apperr.KindUnexpected, r.Kind)
	})

	t.Run("NoIssuer", func(t *testing.T) {
		svc := NewService(nil, ids, nil, Options{})
		r := svc.Login(context.Background(), "alice@example.com", "secret1")
		require.True(t, r.Success)
		assert.NotContains(t, r.Data, "access_token")
	})
}

func TestGetAlbumIncludesTracks(t *testing.T) {
	svc := NewService(fakeCatalog{
		getAlbum: func(id string) (*catalog.Album, error) {
			return &catalog.Album{ID: id, Title: "Animals", TotalTracks: 99}, nil
		},
		byAlbum: func(string) ([]catalog.TrackDetail, error) {
			return []catalog.TrackDetail{track("t-1", "Dogs", intPtr(1024), 0)}, nil
		},
	}, nil, nil, Options{})

	r := svc.GetAlbum(context.Background(), "al-1", true)
	require.True(t, r.Success)
	p := r.Data["album"].(AlbumPayload)
	assert.Equal(t, 1, p.TotalTracks)
	assert.Equal(t, "17:04", p.TotalDurationFormatted)

	r = svc.GetAlbum(context.Background(), "al-1", false)
	p = r.Data["album"].(AlbumPayload)
	assert.Equal(t, 99, p.TotalTracks)
	assert.Nil(t, p.Tracks)
}

func TestAddTrackToPlaylist(t *testing.T) {
	rec := &recorder{}
	svc := NewService(nil, nil, fakePlaylists{
		addTrack: func(playlistID, requesterID, trackID string, position *int) (*playlist.Entry, error) {
			if requesterID != "owner" {
				return nil, apperr.AccessDenied()
			}
			return &playlist.Entry{TrackDetail: track(trackID, "Money", intPtr(382), 0), Position: 3}, nil
		},
	}, Options{Events: rec})

	r := svc.AddTrackToPlaylist(context.Background(), "pl-1", "owner", "t-1", nil)
	require.True(t, r.Success)
	assert.True(t, r.Created)
	assert.Equal(t, 3, r.Data["entry"].(PlaylistTrackPayload).Position)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.PlaylistTrackAdded, rec.events[0].Type)

	r = svc.AddTrackToPlaylist(context.Background(), "pl-1", "stranger", "t-1", nil)
	assert.Equal(t, apperr.KindAccessDenied, r.Kind)
	assert.Len(t, rec.events, 1)
}

func TestGetPlaylistHiddenFromStrangers(t *testing.T) {
	svc := NewService(nil, nil, fakePlaylists{
		getFull: func(string, string) (*playlist.Playlist, error) { return nil, apperr.AccessDenied() },
	}, Options{})

	r := svc.GetPlaylist(context.Background(), "pl-1", "", true)
	assert.False(t, r.Success)
	assert.Equal(t, "access denied", r.Message)
	assert.Equal(t, 403, r.Status())
}
