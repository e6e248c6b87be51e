package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message direction relative to the business account.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Delivery status values. The provider sends free-form strings; these are the
// ones we write ourselves.
const (
	StatusSent     = "sent"
	StatusReceived = "received"
)

// Message types from the Cloud API.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

// Message represents a single communication event in the database.
// MessageID is the provider-assigned id (or a locally generated token when the
// provider response omits one) and is unique: redelivery of the same provider
// event must not create a second row.
type Message struct {
	ID                     uuid.UUID       `db:"id"`
	MessageID              string          `db:"message_id"`
	PhoneNumber            string          `db:"phone_number"`
	FromNumber             string          `db:"from_number"`
	ToNumber               string          `db:"to_number"`
	Body                   *string         `db:"body"` // nil for non-text types without caption
	Direction              string          `db:"direction"`
	Status                 string          `db:"status"`
	Timestamp              time.Time       `db:"timestamp"` // event time, distinct from CreatedAt
	MessageType            string          `db:"message_type"`
	MediaID                *string         `db:"media_id"`
	MediaMimeType          *string         `db:"media_mime_type"`
	Caption                *string         `db:"caption"`
	IsAIResponse           bool            `db:"is_ai_response"`
	ResponseLatencySeconds *float64        `db:"response_latency_seconds"`
	Metadata               json.RawMessage `db:"metadata"` // raw provider payload
	CreatedAt              time.Time       `db:"created_at"`
}

// BodyText returns the stored body, or a bracketed placeholder for media
// messages that carry no caption.
func (m *Message) BodyText() string {
	if m.Body != nil && *m.Body != "" {
		return *m.Body
	}
	switch m.MessageType {
	case MessageTypeImage:
		return "[Image]"
	case MessageTypeVideo:
		return "[Video]"
	case MessageTypeAudio:
		return "[Audio]"
	case MessageTypeDocument:
		return "[Document]"
	default:
		return ""
	}
}

// CounterpartyNumber derives the conversation grouping key: the external
// phone identifier regardless of direction.
func (m *Message) CounterpartyNumber() string {
	if m.Direction == DirectionInbound {
		return m.FromNumber
	}
	return m.ToNumber
}

// WebhookLog is an append-only audit record of a received provider callback.
// Only the Processed flag is ever mutated after insert.
type WebhookLog struct {
	ID        uuid.UUID       `db:"id"`
	EventType string          `db:"event_type"`
	Payload   json.RawMessage `db:"payload"`
	Processed bool            `db:"processed"`
	Error     *string         `db:"error"`
	CreatedAt time.Time       `db:"created_at"`
}
