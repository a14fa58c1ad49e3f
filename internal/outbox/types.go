// Package outbox delivers notifications persisted next to business writes.
// Delivery is at-least-once and never feeds back into the write that
// produced the message.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is a claimed notification_outbox row.
type Message struct {
	Id        uuid.UUID       `db:"id"`
	Type      string          `db:"type"`
	Payload   json.RawMessage `db:"payload"`
	Attempts  int             `db:"attempts"`
	CreatedAt time.Time       `db:"created_at"`
}

type Store interface {
	// Claim locks up to limit due messages. Locks older than staleBefore are
	// considered abandoned and may be claimed again.
	Claim(ctx context.Context, now time.Time, staleBefore time.Time, limit int) ([]Message, error)
	Ack(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
	Retry(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error
	Bury(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
	Pending(ctx context.Context) (int, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

type DispatcherFunc func(ctx context.Context, msg Message) error

func (f DispatcherFunc) Dispatch(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
