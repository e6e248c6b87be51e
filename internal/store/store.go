package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wadash-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// CreateMessageParams contains parameters for persisting a message row.
type CreateMessageParams struct {
	MessageID              string
	PhoneNumber            string
	FromNumber             string
	ToNumber               string
	Body                   *string
	Direction              string
	Status                 string
	Timestamp              time.Time
	MessageType            string
	MediaID                *string
	MediaMimeType          *string
	Caption                *string
	IsAIResponse           bool
	ResponseLatencySeconds *float64
	Metadata               json.RawMessage
}

// CreateWebhookLogParams contains parameters for appending an audit row.
type CreateWebhookLogParams struct {
	EventType string
	Payload   json.RawMessage
	Processed bool
	Error     *string
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// Message operations. UpsertMessage reports whether a new row was
	// inserted; a redelivered message_id is silently ignored and returns
	// false, which keeps webhook ingestion idempotent.
	UpsertMessage(ctx context.Context, arg CreateMessageParams) (bool, error)
	ListMessages(ctx context.Context, limit int) ([]models.Message, error)
	UpdateMessageStatus(ctx context.Context, messageID, status string) error

	// GetLastHumanResponse returns the most recent outbound, non-automated
	// message for the phone number with timestamp >= since, or ErrNotFound.
	GetLastHumanResponse(ctx context.Context, phoneNumber string, since time.Time) (*models.Message, error)

	// Webhook audit log operations. The log is append-only.
	CreateWebhookLog(ctx context.Context, arg CreateWebhookLogParams) (uuid.UUID, error)
	ListWebhookLogs(ctx context.Context, limit int) ([]models.WebhookLog, error)
}
