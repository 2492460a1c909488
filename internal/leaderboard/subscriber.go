package leaderboard

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

// DefaultChannel carries leaderboard updates between instances.
const DefaultChannel = "quiz:leaderboard"

// Broadcaster listens for Redis Pub/Sub leaderboard updates and forwards them to all clients.
type Broadcaster struct {
	redis   *redis.Client
	channel string
	pub     publisher
	logger  zerolog.Logger
}

// NewBroadcaster creates a Pub/Sub powered leaderboard broadcaster.
func NewBroadcaster(client *redis.Client, svc *Service, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	logger = logger.With().Str("component", "leaderboard_broadcaster").Logger()
	return &Broadcaster{
		redis:   client,
		channel: channel,
		pub:     publisher{svc: svc, hub: hub, topN: DefaultTopN, logger: logger},
		logger:  logger,
	}
}

// Run subscribes to the update channel and blocks until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.redis == nil || b.pub.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.logger.Info().Str("channel", b.channel).Msg("leaderboard broadcaster subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(ctx, msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(ctx context.Context, payload string) {
	var upd Update
	if err := json.Unmarshal([]byte(payload), &upd); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode leaderboard update payload")
		return
	}
	b.pub.publish(ctx, upd)
}
