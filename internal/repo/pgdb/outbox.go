package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"waseet-api/internal/entity"
	"waseet-api/internal/outbox"
	"waseet-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const outboxTable = "notification_outbox"

// rollback aborts tx and returns cause, joined with the rollback failure if
// there is one.
func rollback(tx *sqlx.Tx, cause error) error {
	if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
		return errors.Join(cause, fmt.Errorf("rollback: %w", e))
	}

	return cause
}

func enqueueNotifications(ctx context.Context, tx *sqlx.Tx, builder squirrel.StatementBuilderType, notifications ...entity.Notification) error {
	for _, n := range notifications {
		if n.Type == "" {
			continue
		}

		payload, err := json.Marshal(n.Record)
		if err != nil {
			return fmt.Errorf("encode notification %s: %w", n.Type, err)
		}

		enqueueSql, args, _ := builder.
			Insert(outboxTable).
			Columns("type", "payload").
			Values(n.Type, payload).
			ToSql()

		if _, err = tx.ExecContext(ctx, enqueueSql, args...); err != nil {
			return err
		}
	}

	return nil
}

type OutboxRepo struct {
	*postgres.Postgres
}

func NewOutboxRepo(pgdb *postgres.Postgres) *OutboxRepo {
	return &OutboxRepo{pgdb}
}

func (r *OutboxRepo) Claim(ctx context.Context, now time.Time, staleBefore time.Time, limit int) ([]outbox.Message, error) {
	tx, err := r.Database.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	claimSql, args, _ := r.SqlBuilder.
		Select("id, type, payload, attempts, created_at").
		From(outboxTable).
		Where("published_at IS NULL").
		Where("dead = false").
		Where("next_attempt_at <= ?", now).
		Where(squirrel.Or{squirrel.Eq{"locked_at": nil}, squirrel.Lt{"locked_at": staleBefore}}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()

	rows, err := tx.QueryContext(ctx, claimSql, args...)
	if err != nil {
		return nil, rollback(tx, err)
	}

	messages := make([]outbox.Message, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var msg outbox.Message
		var payload []byte
		if err := rows.Scan(&msg.Id, &msg.Type, &payload, &msg.Attempts, &msg.CreatedAt); err != nil {
			rows.Close()
			return nil, rollback(tx, err)
		}
		msg.Payload = payload
		messages = append(messages, msg)
		ids = append(ids, msg.Id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, rollback(tx, err)
	}

	if len(ids) == 0 {
		return messages, tx.Commit()
	}

	lockSql, args, _ := r.SqlBuilder.
		Update(outboxTable).
		Set("locked_at", now).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if _, err = tx.ExecContext(ctx, lockSql, args...); err != nil {
		return nil, rollback(tx, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *OutboxRepo) Ack(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	ackSql, args, _ := r.SqlBuilder.
		Update(outboxTable).
		Set("published_at", publishedAt).
		Set("locked_at", nil).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, ackSql, args...)

	return err
}

func (r *OutboxRepo) Retry(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error {
	retrySql, args, _ := r.SqlBuilder.
		Update(outboxTable).
		Set("attempts", attempts).
		Set("next_attempt_at", nextAttemptAt).
		Set("last_error", lastError).
		Set("locked_at", nil).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, retrySql, args...)

	return err
}

func (r *OutboxRepo) Bury(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	burySql, args, _ := r.SqlBuilder.
		Update(outboxTable).
		Set("attempts", attempts).
		Set("dead", true).
		Set("last_error", lastError).
		Set("locked_at", nil).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, burySql, args...)

	return err
}

func (r *OutboxRepo) Pending(ctx context.Context) (int, error) {
	countSql, args, _ := r.SqlBuilder.
		Select("count(*)").
		From(outboxTable).
		Where("published_at IS NULL").
		Where("dead = false").
		ToSql()

	var pending int
	if err := r.Database.QueryRowContext(ctx, countSql, args...).Scan(&pending); err != nil {
		return 0, err
	}

	return pending, nil
}
