package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"wadash-backend/internal/models"
	"wadash-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertMessage = `-- name: UpsertMessage :exec
INSERT INTO messages (
    message_id, phone_number, from_number, to_number, body, direction, status,
    timestamp, message_type, media_id, media_mime_type, caption,
    is_ai_response, response_latency_seconds, metadata
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
)
ON CONFLICT (message_id) DO NOTHING;
`

// UpsertMessage inserts a message row, ignoring redeliveries of an already
// stored message_id. Returns true when a new row was written.
func (s *PostgresStore) UpsertMessage(ctx context.Context, arg store.CreateMessageParams) (bool, error) {
	tag, err := s.db.Exec(ctx, upsertMessage,
		arg.MessageID,
		arg.PhoneNumber,
		arg.FromNumber,
		arg.ToNumber,
		arg.Body,
		arg.Direction,
		arg.Status,
		arg.Timestamp,
		arg.MessageType,
		arg.MediaID,
		arg.MediaMimeType,
		arg.Caption,
		arg.IsAIResponse,
		arg.ResponseLatencySeconds,
		arg.Metadata,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Printf("ERROR [PostgresStore] UpsertMessage: PostgreSQL error for message_id %s: Code=%s, Message=%s", arg.MessageID, pgErr.Code, pgErr.Message)
		} else {
			log.Printf("ERROR [PostgresStore] UpsertMessage: Failed to execute insert for message_id %s: %v", arg.MessageID, err)
		}
		return false, fmt.Errorf("database error inserting message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const listMessages = `-- name: ListMessages :many
SELECT id, message_id, phone_number, from_number, to_number, body, direction, status,
       timestamp, message_type, media_id, media_mime_type, caption,
       is_ai_response, response_latency_seconds, metadata, created_at
FROM messages
ORDER BY timestamp DESC
LIMIT $1;
`

func (s *PostgresStore) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.Query(ctx, listMessages, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var items []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		items = append(items, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return items, nil
}

const updateMessageStatus = `-- name: UpdateMessageStatus :exec
UPDATE messages
SET status = $1
WHERE message_id = $2;
`

func (s *PostgresStore) UpdateMessageStatus(ctx context.Context, messageID, status string) error {
	tag, err := s.db.Exec(ctx, updateMessageStatus, status, messageID)
	if err != nil {
		return fmt.Errorf("error executing update message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const getLastHumanResponse = `-- name: GetLastHumanResponse :one
SELECT id, message_id, phone_number, from_number, to_number, body, direction, status,
       timestamp, message_type, media_id, media_mime_type, caption,
       is_ai_response, response_latency_seconds, metadata, created_at
FROM messages
WHERE phone_number = $1
  AND direction = 'outbound'
  AND is_ai_response = false
  AND timestamp >= $2
ORDER BY timestamp DESC
LIMIT 1;
`

func (s *PostgresStore) GetLastHumanResponse(ctx context.Context, phoneNumber string, since time.Time) (*models.Message, error) {
	row := s.db.QueryRow(ctx, getLastHumanResponse, phoneNumber, since)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning last human response: %w", err)
	}
	return &m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID,
		&m.MessageID,
		&m.PhoneNumber,
		&m.FromNumber,
		&m.ToNumber,
		&m.Body,
		&m.Direction,
		&m.Status,
		&m.Timestamp,
		&m.MessageType,
		&m.MediaID,
		&m.MediaMimeType,
		&m.Caption,
		&m.IsAIResponse,
		&m.ResponseLatencySeconds,
		&m.Metadata,
		&m.CreatedAt,
	)
	return m, err
}
