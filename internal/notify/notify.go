// Package notify delivers price alerts to the user. Delivery is best-effort
// and unacknowledged: implementations return an error so callers can log it,
// but a failed delivery is never fatal to a check.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gauravrohinda/trackprices/internal/logger"
)

// Notifier sends one human-readable alert.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// LogNotifier writes alerts to the process log. Used when no delivery
// channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, title, message string) error {
	logger.Log.Info("notification",
		zap.String("title", title),
		zap.String("message", message),
	)
	return nil
}

type alertPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// RedisNotifier publishes alerts on a Redis pub-sub channel; the surrounding
// application's delivery surface subscribes and forwards them to the user.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier constructs a RedisNotifier publishing on channel.
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, title, message string) error {
	payload, err := json.Marshal(alertPayload{
		Title:   title,
		Message: message,
		SentAt:  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert on %s: %w", n.channel, err)
	}
	return nil
}
