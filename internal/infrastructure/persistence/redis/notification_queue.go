package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/collab-hub/collab-portal/internal/domain/notification"
)

// NotificationQueue is a redis-list queue decoupling notification
// production from delivery. The API process pushes; the worker process
// blocks on pop and forwards to the external sink. A crash between pop
// and delivery loses at most one notification, which best-effort
// semantics tolerate.
type NotificationQueue struct {
	client *redis.Client
	key    string
}

// NewNotificationQueue creates a queue on the given list key.
func NewNotificationQueue(client *redis.Client, key string) *NotificationQueue {
	if key == "" {
		key = PrefixNotification + "queue"
	}
	return &NotificationQueue{client: client, key: key}
}

// Send enqueues one notification. Implements notification.Sink so the
// dispatcher can push without knowing about the queue.
func (q *NotificationQueue) Send(ctx context.Context, n notification.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("notification queue: push failed: %w", err)
	}
	return nil
}

var _ notification.Sink = (*NotificationQueue)(nil)

// Pop blocks until a notification is available or the timeout passes.
// Returns ErrQueueEmpty on timeout.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (notification.Notification, error) {
	var n notification.Notification

	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return n, ErrQueueEmpty
		}
		return n, fmt.Errorf("notification queue: pop failed: %w", err)
	}
	// BRPop returns [key, value].
	if len(result) != 2 {
		return n, ErrQueueEmpty
	}

	if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
		return n, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return n, nil
}

// Len reports the number of queued notifications.
func (q *NotificationQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
