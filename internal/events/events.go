// Package events fans out domain events over Redis pub/sub. Publishing is
// best effort: a failed publish is logged and never fails the operation that
// produced the event.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "broadcast"

const (
	TrackCreated         = "track.created"
	TrackUpdated         = "track.updated"
	TrackDeleted         = "track.deleted"
	TrackPlayed          = "track.played"
	UserRegistered       = "user.registered"
	FavoriteAdded        = "favorite.added"
	FavoriteRemoved      = "favorite.removed"
	PlaylistCreated      = "playlist.created"
	PlaylistUpdated      = "playlist.updated"
	PlaylistDeleted      = "playlist.deleted"
	PlaylistTrackAdded   = "playlist.track_added"
	PlaylistTrackRemoved = "playlist.track_removed"
)

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

// Event is the message written to the channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, log *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{rdb: rdb, channel: channel, log: log}
}

// Connect parses a redis:// URL and returns a client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		p.log.Warn("marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		p.log.Warn("publish event", zap.String("type", eventType), zap.Error(err))
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}
