package aggregate

import (
	"context"

	"music-platform/internal/events"
	"music-platform/internal/playlist"
)

func (s *Service) CreatePlaylist(ctx context.Context, ownerID, name string, description *string, isPublic bool) Result {
	p, err := s.playlists.Create(ctx, ownerID, name, description, isPublic)
	if err != nil {
		return s.fail("create playlist", err)
	}
	s.publish(ctx, events.PlaylistCreated, map[string]any{"playlistId": p.ID, "ownerId": p.OwnerID})
	return created("playlist", PlaylistPayloadOf(*p))
}

func (s *Service) GetPlaylist(ctx context.Context, playlistID, requesterID string, includeTracks bool) Result {
	var (
		p   *playlist.Playlist
		err error
	)
	if includeTracks {
		p, err = s.playlists.GetWithTracks(ctx, playlistID, requesterID)
	} else {
		p, err = s.playlists.Get(ctx, playlistID, requesterID)
	}
	if err != nil {
		return s.fail("get playlist", err)
	}
	return ok("playlist", PlaylistPayloadOf(*p))
}

func (s *Service) UpdatePlaylist(ctx context.Context, playlistID, requesterID string, patch playlist.Patch) Result {
	p, err := s.playlists.Update(ctx, playlistID, requesterID, patch)
	if err != nil {
		return s.fail("update playlist", err)
	}
	s.publish(ctx, events.PlaylistUpdated, map[string]any{"playlistId": p.ID})
	return ok("playlist", PlaylistPayloadOf(*p))
}

func (s *Service) DeletePlaylist(ctx context.Context, playlistID, requesterID string) Result {
	if err := s.playlists.Delete(ctx, playlistID, requesterID); err != nil {
		return s.fail("delete playlist", err)
	}
	s.publish(ctx, events.PlaylistDeleted, map[string]any{"playlistId": playlistID})
	return done("playlist deleted")
}

func (s *Service) AddTrackToPlaylist(ctx context.Context, playlistID, requesterID, trackID string, position *int) Result {
	e, err := s.playlists.AddTrack(ctx, playlistID, requesterID, trackID, position)
	if err != nil {
		return s.fail("add track to playlist", err)
	}
	s.publish(ctx, events.PlaylistTrackAdded, map[string]any{
		"playlistId": playlistID,
		"trackId":    trackID,
		"position":   e.Position,
	})
	return created("entry", EntryPayloadOf(*e))
}

func (s *Service) RemoveTrackFromPlaylist(ctx context.Context, playlistID, requesterID, trackID string) Result {
	if err := s.playlists.RemoveTrack(ctx, playlistID, requesterID, trackID); err != nil {
		return s.fail("remove track from playlist", err)
	}
	s.publish(ctx, events.PlaylistTrackRemoved, map[string]any{"playlistId": playlistID, "trackId": trackID})
	return done("track removed from playlist")
}

func (s *Service) ListPublicPlaylists(ctx context.Context, limit int) Result {
	limit = s.paging.clamp(limit)
	ps, err := s.playlists.ListPublic(ctx, limit)
	if err != nil {
		return s.fail("list public playlists", err)
	}
	return page(PlaylistPayloads(ps), len(ps), limit, 0)
}

func (s *Service) ListOwnedPlaylists(ctx context.Context, ownerID string, includeTracks bool) Result {
	ps, err := s.playlists.ListOwned(ctx, ownerID, includeTracks)
	if err != nil {
		return s.fail("list owned playlists", err)
	}
	return page(PlaylistPayloads(ps), len(ps), len(ps), 0)
}
