// Package mq carries cache revalidation signals over Redis pub/sub so every
// instance and the admin live feed learn which pages went stale.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"wanderlust/logx"
	"wanderlust/rdx"
)

// RevalidateChannel is the Redis channel revalidation events go out on.
const RevalidateChannel = "revalidate"

// Event lists the page paths whose cached data changed.
type Event struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Revalidator drops local cache entries for changed paths and announces the
// paths to the other instances.
type Revalidator struct {
	cache *rdx.Cache
	pub   Publisher
}

func NewRevalidator(cache *rdx.Cache, pub Publisher) *Revalidator {
	return &Revalidator{cache: cache, pub: pub}
}

// Revalidate never fails the caller: a stale cache is logged, not surfaced.
func (rv *Revalidator) Revalidate(ctx context.Context, paths ...string) {
	if rv == nil || len(paths) == 0 {
		return
	}
	log := logx.FromContext(ctx)

	if err := rv.cache.Del(ctx, rdx.KeysFor(paths...)...); err != nil {
		log.Warn().Err(err).Strs("paths", paths).Msg("revalidate: drop cache")
	}

	data, err := json.Marshal(Event{Paths: paths, At: time.Now().UTC()})
	if err != nil {
		log.Warn().Err(err).Msg("revalidate: marshal event")
		return
	}
	if err := rv.pub.Publish(ctx, RevalidateChannel, data).Err(); err != nil {
		log.Warn().Err(err).Strs("paths", paths).Msg("revalidate: publish")
	}
}

// Listen consumes revalidation events until ctx is cancelled, dropping the
// matching cache keys and handing each event to notify.
func Listen(ctx context.Context, sub Subscriber, cache *rdx.Cache, log zerolog.Logger, notify func(Event)) {
	ps := sub.Subscribe(ctx, RevalidateChannel)
	defer ps.Close()
	ch := ps.Channel()

	log.Info().Str("channel", RevalidateChannel).Msg("listening for revalidation events")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			handle(ctx, msg.Payload, cache, log, notify)
		}
	}
}

func handle(ctx context.Context, payload string, cache *rdx.Cache, log zerolog.Logger, notify func(Event)) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Warn().Err(err).Msg("revalidate: bad payload")
		return
	}
	if err := cache.Del(ctx, rdx.KeysFor(ev.Paths...)...); err != nil {
		log.Warn().Err(err).Strs("paths", ev.Paths).Msg("revalidate: drop cache")
	}
	if notify != nil {
		notify(ev)
	}
}
