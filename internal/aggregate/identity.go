package aggregate

import (
	"context"

	"music-platform/internal/apperr"
	"music-platform/internal/events"
	"music-platform/internal/identity"
)

func (s *Service) Register(ctx context.Context, name, email, password string) Result {
	u, err := s.identity.Register(ctx, name, email, password)
	if err != nil {
		return s.fail("register", err)
	}
	s.publish(ctx, events.UserRegistered, map[string]any{"userId": u.ID})
	return created("user", UserPayloadOf(*u))
}

// Login authenticates and, when a token issuer is configured, returns an
// access token with the user.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	u, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		return s.fail("login", err)
	}
	r := ok("user", UserPayloadOf(*u))
	if s.tokens != nil {
		token, expires, err := s.tokens.Issue(u.ID)
		if err != nil {
			return s.fail("login", apperr.Unexpected("issue token", err))
		}
		r.Data["access_token"] = token
		r.Data["expires_at"] = expires
	}
	return r
}

func (s *Service) Profile(ctx context.Context, userID string) Result {
	u, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return s.fail("profile", err)
	}
	return ok("user", UserPayloadOf(*u))
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch identity.ProfilePatch) Result {
	if _, err := s.identity.UpdateProfile(ctx, userID, patch); err != nil {
		return s.fail("update profile", err)
	}
	return s.Profile(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) Result {
	if err := s.identity.ChangePassword(ctx, userID, current, next); err != nil {
		return s.fail("change password", err)
	}
	return done("password changed")
}

func (s *Service) Deactivate(ctx context.Context, userID string) Result {
	if err := s.identity.Deactivate(ctx, userID); err != nil {
		return s.fail("deactivate", err)
	}
	return done("account deactivated")
}

func (s *Service) AddFavorite(ctx context.Context, userID, trackID string) Result {
	if err := s.identity.AddFavorite(ctx, userID, trackID); err != nil {
		return s.fail("add favorite", err)
	}
	s.publish(ctx, events.FavoriteAdded, map[string]any{"userId": userID, "trackId": trackID})
	return ok("favorite", true)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, trackID string) Result {
	if err := s.identity.RemoveFavorite(ctx, userID, trackID); err != nil {
		return s.fail("remove favorite", err)
	}
	s.publish(ctx, events.FavoriteRemoved, map[string]any{"userId": userID, "trackId": trackID})
	return ok("favorite", false)
}

func (s *Service) IsFavorite(ctx context.Context, userID, trackID string) Result {
	fav, err := s.identity.IsFavorite(ctx, userID, trackID)
	if err != nil {
		return s.fail("is favorite", err)
	}
	return ok("favorite", fav)
}

func (s *Service) ListFavorites(ctx context.Context, userID string) Result {
	tracks, err := s.identity.ListFavorites(ctx, userID)
	if err != nil {
		return s.fail("list favorites", err)
	}
	return page(TrackPayloads(tracks), len(tracks), len(tracks), 0)
}
