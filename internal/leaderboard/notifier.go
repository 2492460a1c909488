package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/highscore"
	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

// Update is the event emitted when a new high score is recorded.
type Update struct {
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recordedAt"`
}

func updateFromEntry(category string, entry highscore.Entry) Update {
	return Update{
		Category:   category,
		Name:       entry.Name,
		Score:      entry.Score,
		RecordedAt: entry.RecordedAt,
	}
}

// publisher renders updates into hub messages carrying a fresh top list.
type publisher struct {
	svc    *Service
	hub    *ws.Hub
	topN   int
	logger zerolog.Logger
}

func (p publisher) publish(ctx context.Context, upd Update) {
	top, err := p.svc.Top(ctx, p.topN)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load leaderboard for update")
		top = nil
	}

	msg, err := ws.NewMessage(ws.TypeLeaderboardUpdate, ws.LeaderboardUpdatePayload{
		Category: upd.Category,
		Entry: toWSEntry(Entry{
			Name:       upd.Name,
			Score:      upd.Score,
			Category:   upd.Category,
			RecordedAt: upd.RecordedAt,
		}),
		Top: toWSEntries(top),
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to marshal leaderboard WS payload")
		return
	}
	if err := p.hub.BroadcastAll(msg); err != nil {
		p.logger.Warn().Err(err).Msg("failed to broadcast leaderboard update")
	}
}

// LocalNotifier pushes updates straight to this process's subscribers.
type LocalNotifier struct {
	pub publisher
}

func NewLocalNotifier(svc *Service, hub *ws.Hub, logger zerolog.Logger) *LocalNotifier {
	return &LocalNotifier{pub: publisher{
		svc:    svc,
		hub:    hub,
		topN:   DefaultTopN,
		logger: logger.With().Str("component", "leaderboard_notifier").Logger(),
	}}
}

func (n *LocalNotifier) HighScoreRecorded(ctx context.Context, category string, entry highscore.Entry) {
	n.pub.publish(ctx, updateFromEntry(category, entry))
}

// RedisNotifier publishes updates on a Redis channel so every instance's
// Broadcaster can forward them.
type RedisNotifier struct {
	redis   *redis.Client
	channel string
	logger  zerolog.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger zerolog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		redis:   client,
		channel: channel,
		logger:  logger.With().Str("component", "leaderboard_notifier").Logger(),
	}
}

func (n *RedisNotifier) HighScoreRecorded(ctx context.Context, category string, entry highscore.Entry) {
	data, err := json.Marshal(updateFromEntry(category, entry))
	if err != nil {
		n.logger.Warn().Err(err).Msg("failed to encode leaderboard update")
		return
	}
	if err := n.redis.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Warn().Err(err).Str("channel", n.channel).Msg("failed to publish leaderboard update")
	}
}
