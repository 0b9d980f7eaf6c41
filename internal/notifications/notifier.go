// Package notifications delivers realtime feed events over Redis pub/sub
// and WebSocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"

	"devhub/internal/featureflags"
	"devhub/internal/models"
	"devhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis channel carrying every feed event.
const FeedChannel = "feed:broadcast"

// Notifier publishes feed events into Redis.
type Notifier struct {
	rdb   *redis.Client
	flags *featureflags.Manager
	log   *slog.Logger
}

// NewNotifier creates a Notifier. A nil Redis client turns publishing into a no-op.
func NewNotifier(rdb *redis.Client, flags *featureflags.Manager, log *slog.Logger) *Notifier {
	return &Notifier{rdb: rdb, flags: flags, log: log}
}

// PublishFeed sends event to every feed subscriber. Failures are logged and
// counted, never returned.
func (n *Notifier) PublishFeed(ctx context.Context, event models.FeedEvent) {
	if n.rdb == nil || !n.flags.Enabled(featureflags.RealtimeFeed, event.UserID) {
		observability.FeedEventsPublished.WithLabelValues(event.Type, "skipped").Inc()
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		observability.FeedEventsPublished.WithLabelValues(event.Type, "error").Inc()
		n.log.ErrorContext(ctx, "marshal feed event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	if err := n.rdb.Publish(ctx, FeedChannel, payload).Err(); err != nil {
		observability.FeedEventsPublished.WithLabelValues(event.Type, "error").Inc()
		n.log.WarnContext(ctx, "publish feed event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	observability.FeedEventsPublished.WithLabelValues(event.Type, "published").Inc()
}

// StartFeedSubscriber subscribes to the feed channel and calls onMessage for
// each payload until ctx is cancelled.
func (n *Notifier) StartFeedSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
	// Wait for the subscription to be confirmed so no early publish is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							n.log.Error("panic in feed subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
