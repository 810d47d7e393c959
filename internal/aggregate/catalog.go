package aggregate

import (
	"context"

	"music-platform/internal/catalog"
	"music-platform/internal/events"
)

func (s *Service) SearchTracks(ctx context.Context, term string, limit, offset int) Result {
	limit = s.paging.clamp(limit)
	tracks, total, err := s.catalog.Search(ctx, term, limit, offset)
	if err != nil {
		return s.fail("search tracks", err)
	}
	return page(TrackPayloads(tracks), total, limit, offset)
}

func (s *Service) GetTrack(ctx context.Context, id string) Result {
	td, err := s.catalog.GetTrack(ctx, id)
	if err != nil {
		return s.fail("get track", err)
	}
	return ok("track", TrackPayloadOf(*td))
}

func (s *Service) CreateTrack(ctx context.Context, in catalog.NewTrack) Result {
	td, err := s.catalog.CreateTrack(ctx, in)
	if err != nil {
		return s.fail("create track", err)
	}
	s.publish(ctx, events.TrackCreated, map[string]any{"trackId": td.ID, "albumId": td.AlbumID})
	return created("track", TrackPayloadOf(*td))
}

func (s *Service) UpdateTrack(ctx context.Context, id string, patch catalog.TrackPatch) Result {
	td, err := s.catalog.UpdateTrack(ctx, id, patch)
	if err != nil {
		return s.fail("update track", err)
	}
	s.publish(ctx, events.TrackUpdated, map[string]any{"trackId": td.ID})
	return ok("track", TrackPayloadOf(*td))
}

func (s *Service) DeleteTrack(ctx context.Context, id string) Result {
	if err := s.catalog.DeleteTrack(ctx, id); err != nil {
		return s.fail("delete track", err)
	}
	s.publish(ctx, events.TrackDeleted, map[string]any{"trackId": id})
	return done("track deleted")
}

func (s *Service) PopularTracks(ctx context.Context, limit int) Result {
	limit = s.paging.clamp(limit)
	tracks, err := s.catalog.MostPopular(ctx, limit)
	if err != nil {
		return s.fail("popular tracks", err)
	}
	return page(TrackPayloads(tracks), len(tracks), limit, 0)
}

// RecordPlay increments the play counter and returns the new value.
func (s *Service) RecordPlay(ctx context.Context, id string) Result {
	n, err := s.catalog.RecordPlay(ctx, id)
	if err != nil {
		return s.fail("record play", err)
	}
	s.publish(ctx, events.TrackPlayed, map[string]any{"trackId": id, "playCount": n})
	return ok("play_count", n)
}

func (s *Service) CreateArtist(ctx context.Context, in catalog.NewArtist) Result {
	a, err := s.catalog.CreateArtist(ctx, in)
	if err != nil {
		return s.fail("create artist", err)
	}
	return created("artist", ArtistPayloadOf(*a, nil))
}

func (s *Service) GetArtist(ctx context.Context, id string, includeAlbums bool) Result {
	a, err := s.catalog.GetArtist(ctx, id)
	if err != nil {
		return s.fail("get artist", err)
	}
	var albums []catalog.Album
	if includeAlbums {
		if albums, err = s.catalog.ListAlbumsByArtist(ctx, id); err != nil {
			return s.fail("get artist", err)
		}
	}
	return ok("artist", ArtistPayloadOf(*a, albums))
}

func (s *Service) DeleteArtist(ctx context.Context, id string) Result {
	if err := s.catalog.DeleteArtist(ctx, id); err != nil {
		return s.fail("delete artist", err)
	}
	return done("artist deleted")
}

func (s *Service) CreateAlbum(ctx context.Context, in catalog.NewAlbum) Result {
	a, err := s.catalog.CreateAlbum(ctx, in)
	if err != nil {
		return s.fail("create album", err)
	}
	return created("album", AlbumPayloadOf(*a, nil))
}

func (s *Service) GetAlbum(ctx context.Context, id string, includeTracks bool) Result {
	a, err := s.catalog.GetAlbum(ctx, id)
	if err != nil {
		return s.fail("get album", err)
	}
	var tracks []catalog.TrackDetail
	if includeTracks {
		if tracks, err = s.catalog.ListTracksByAlbum(ctx, id); err != nil {
			return s.fail("get album", err)
		}
	}
	return ok("album", AlbumPayloadOf(*a, tracks))
}

func (s *Service) DeleteAlbum(ctx context.Context, id string) Result {
	if err := s.catalog.DeleteAlbum(ctx, id); err != nil {
		return s.fail("delete album", err)
	}
	return done("album deleted")
}
