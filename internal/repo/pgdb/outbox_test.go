package pgdb

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepo_ClaimLocksDueRows(t *testing.T) {
	pg, mock := newMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stale := now.Add(-5 * time.Minute)
	first, second := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, payload, attempts, created_at FROM notification_outbox WHERE published_at IS NULL AND dead = false AND next_attempt_at <= $1 AND (locked_at IS NULL OR locked_at < $2) ORDER BY created_at ASC LIMIT 50 FOR UPDATE SKIP LOCKED")).
		WithArgs(now, stale).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "payload", "attempts", "created_at"}).
			AddRow(first.String(), "medicine_submitted", []byte(`{"id":"a"}`), 0, now).
			AddRow(second.String(), "order_created", []byte(`{"id":"b"}`), 2, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET locked_at = $1 WHERE id IN ($2,$3)")).
		WithArgs(now, first, second).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	messages, err := NewOutboxRepo(pg).Claim(context.Background(), now, stale, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, first, messages[0].Id)
	assert.Equal(t, "medicine_submitted", messages[0].Type)
	assert.JSONEq(t, `{"id":"a"}`, string(messages[0].Payload))
	assert.Equal(t, 2, messages[1].Attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_ClaimNothingDue(t *testing.T) {
	pg, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM notification_outbox").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "payload", "attempts", "created_at"}))
	mock.ExpectCommit()

	messages, err := NewOutboxRepo(pg).Claim(context.Background(), now, now, 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_AckRetryBury(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewOutboxRepo(pg)
	id := uuid.New()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET published_at = $1, locked_at = $2 WHERE id = $3")).
		WithArgs(now, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET attempts = $1, next_attempt_at = $2, last_error = $3, locked_at = $4 WHERE id = $5")).
		WithArgs(3, now, "timeout", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET attempts = $1, dead = $2, last_error = $3, locked_at = $4 WHERE id = $5")).
		WithArgs(10, true, "gone", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Ack(context.Background(), id, now))
	require.NoError(t, repo.Retry(context.Background(), id, 3, now, "timeout"))
	require.NoError(t, repo.Bury(context.Background(), id, 10, "gone"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_Pending(t *testing.T) {
	pg, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM notification_outbox WHERE published_at IS NULL AND dead = false")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	pending, err := NewOutboxRepo(pg).Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, pending)
	require.NoError(t, mock.ExpectationsWereMet())
}
