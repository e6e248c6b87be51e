package postgres

import (
	"context"
	"fmt"
	"log"

	"wadash-backend/internal/models"
	"wadash-backend/internal/store"

	"github.com/google/uuid"
)

const createWebhookLog = `-- name: CreateWebhookLog :one
INSERT INTO webhook_logs (
    id, event_type, payload, processed, error
) VALUES (
    $1, $2, $3, $4, $5
)
RETURNING id;
`

// CreateWebhookLog appends an audit row. It must succeed independently of any
// later parsing: the webhook receiver logs the raw payload before touching it.
func (s *PostgresStore) CreateWebhookLog(ctx context.Context, arg store.CreateWebhookLogParams) (uuid.UUID, error) {
	id := uuid.New()
	row := s.db.QueryRow(ctx, createWebhookLog,
		id,
		arg.EventType,
		arg.Payload,
		arg.Processed,
		arg.Error,
	)
	if err := row.Scan(&id); err != nil {
		log.Printf("ERROR [PostgresStore] CreateWebhookLog: Failed to insert log for event %s: %v", arg.EventType, err)
		return uuid.Nil, fmt.Errorf("database error creating webhook log: %w", err)
	}
	return id, nil
}

const listWebhookLogs = `-- name: ListWebhookLogs :many
SELECT id, event_type, payload, processed, error, created_at
FROM webhook_logs
ORDER BY created_at DESC
LIMIT $1;
`

func (s *PostgresStore) ListWebhookLogs(ctx context.Context, limit int) ([]models.WebhookLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, listWebhookLogs, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying webhook logs: %w", err)
	}
	defer rows.Close()

	var items []models.WebhookLog
	for rows.Next() {
		var l models.WebhookLog
		if err := rows.Scan(
			&l.ID,
			&l.EventType,
			&l.Payload,
			&l.Processed,
			&l.Error,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning webhook log row: %w", err)
		}
		items = append(items, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook log rows: %w", err)
	}

	return items, nil
}
