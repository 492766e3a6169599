// Package events publishes moderation and engagement events into Redis channels.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	BlogSubmitted = "blog.submitted"
	BlogApproved  = "blog.approved"
	BlogRejected  = "blog.rejected"
	BlogHidden    = "blog.hidden"
	BlogRestored  = "blog.restored"
	BlogDeleted   = "blog.deleted"
	CommentAdded  = "comment.added"
	CommentReport = "comment.reported"
	UserToggled   = "user.status_toggled"
)

const (
	moderationChannel = "inkwell:moderation"
	userChannelFormat = "inkwell:user:%d"
)

// Event is the JSON envelope published on every channel.
type Event struct {
	Type       string         `json:"type"`
	ActorID    uint           `json:"actor_id,omitempty"`
	ResourceID uint           `json:"resource_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher sends events to Redis. A Publisher without a client drops events.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Publisher backed by rdb, which may be nil.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishModeration sends evt to the moderation channel and, when recipient
// is non-zero, to that user's channel.
func (p *Publisher) PublishModeration(ctx context.Context, recipient uint, evt Event) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, moderationChannel, payload).Err(); err != nil {
		return err
	}
	if recipient != 0 {
		return p.rdb.Publish(ctx, fmt.Sprintf(userChannelFormat, recipient), payload).Err()
	}
	return nil
}

// Notify publishes evt and logs failures instead of returning them.
// Event delivery never fails the operation that produced it.
func (p *Publisher) Notify(ctx context.Context, recipient uint, evt Event) {
	if err := p.PublishModeration(ctx, recipient, evt); err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("event", evt.Type),
			slog.Uint64("resource_id", uint64(evt.ResourceID)),
			slog.String("error", err.Error()),
		)
	}
}

// Subscribe delivers moderation events to onEvent until ctx is cancelled.
func (p *Publisher) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	sub := p.rdb.Subscribe(ctx, moderationChannel)
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
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					middleware.Logger.Warn("dropping malformed event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(evt)
				}()
			}
		}
	}()
	return nil
}
