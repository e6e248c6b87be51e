package models

import (
	"encoding/json"
	"time"
)

// --- Request Structs ---

// SendMessageRequest defines the body for the send endpoint.
type SendMessageRequest struct {
	To           string `json:"to"`
	Body         string `json:"body"`
	IsAIResponse bool   `json:"isAiResponse"`
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WebhookAck is the always-200 acknowledgment body for event deliveries.
type WebhookAck struct {
	Status string `json:"status"` // "ok" | "error"
}

// SendMessageResponse wraps the provider's raw response on a successful send.
type SendMessageResponse struct {
	Message json.RawMessage `json:"message"`
	Success bool            `json:"success"`
}

// MessageItem is the flat message shape served by GET /messages.
// Direction is normalized to "inbound" | "outbound-api".
type MessageItem struct {
	SID          string    `json:"sid"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Body         string    `json:"body"`
	DateSent     time.Time `json:"date_sent"`
	Status       string    `json:"status"`
	Direction    string    `json:"direction"`
	MessageType  string    `json:"message_type"`
	IsAIResponse bool      `json:"is_ai_response"`
}

// ListMessagesResponse defines the response for GET /messages.
type ListMessagesResponse struct {
	Messages []MessageItem `json:"messages"`
}

// CheckHumanResponse defines the response for GET /check-human.
type CheckHumanResponse struct {
	PhoneNumber           string     `json:"phoneNumber"`
	HumanActive           bool       `json:"humanActive"`
	LastHumanResponseTime *time.Time `json:"lastHumanResponseTime"`
	HoursRemaining        float64    `json:"hoursRemaining"`
	Message               string     `json:"message"`
}

// --- Conversation DTOs ---

// Reply classification values for outbound messages.
const (
	ReplyAutomated = "automated"
	ReplyHuman     = "human-authored"
)

// ConversationMessage is a message annotated for presentation. ReplyClass is
// only set on outbound messages.
type ConversationMessage struct {
	MessageItem
	Timestamp  time.Time `json:"timestamp"`
	ReplyClass string    `json:"reply_class,omitempty"`
}

// Conversation groups the messages exchanged with one counterparty, newest
// first. It is derived on each read, never persisted.
type Conversation struct {
	PhoneNumber   string                `json:"phone_number"`
	Messages      []ConversationMessage `json:"messages"`
	LastMessage   *ConversationMessage  `json:"last_message"`
	OutsideWindow bool                  `json:"outside_window"` // 24h provider window elapsed
	HumanActive   bool                  `json:"human_active"`
}

// ListConversationsResponse defines the response for GET /conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}

// Recency buckets for conversation filtering.
const (
	BucketAll     = "all"
	Bucket4h      = "4h"
	Bucket8h      = "8h"
	Bucket24h     = "24h"
	BucketOver24h = "over24h"
)

// Sort keys for conversation filtering.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortActive = "active"
)

// ConversationFilter holds the presentation filter/sort parameters. Zero
// value means no filtering, newest first.
type ConversationFilter struct {
	Bucket string
	Query  string
	Sort   string
}

// AnalyticsResponse is the derived rollup for the dashboard.
type AnalyticsResponse struct {
	TotalConversations        int     `json:"total_conversations"`
	TotalMessages             int     `json:"total_messages"`
	MessagesLast24h           int     `json:"messages_last_24h"`
	MessagesLast7d            int     `json:"messages_last_7d"`
	AutomatedReplies          int     `json:"automated_replies"`
	HumanReplies              int     `json:"human_replies"`
	AvgResponseLatencySeconds float64 `json:"avg_response_latency_seconds"`
}
