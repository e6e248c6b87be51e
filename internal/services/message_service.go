package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/integrations/whatsapp"
	"wadash-backend/internal/models"
	"wadash-backend/internal/store"
)

// ProviderClient is the part of the WhatsApp client the message service
// needs; it exists so tests can substitute a fake provider.
type ProviderClient interface {
	SendText(ctx context.Context, to, body string) (*whatsapp.SendResult, error)
}

// MessageService owns the send path and the flat message read path.
type MessageService struct {
	store          store.Store
	provider       ProviderClient
	businessNumber string
	fetchLimit     int
	now            func() time.Time
}

func NewMessageService(st store.Store, provider ProviderClient, businessNumber string, fetchLimit int) *MessageService {
	return &MessageService{
		store:          st,
		provider:       provider,
		businessNumber: businessNumber,
		fetchLimit:     fetchLimit,
		now:            time.Now,
	}
}

// SendMessage validates the request, forwards the text to the provider, and
// persists exactly one outbound row on success. A provider failure leaves no
// row behind; the caller owns retries.
func (s *MessageService) SendMessage(ctx context.Context, req models.SendMessageRequest) (*models.SendMessageResponse, error) {
	if req.To == "" {
		return nil, apperr.NewValidation("to", "recipient is required")
	}
	if req.Body == "" {
		return nil, apperr.NewValidation("body", "message body is required")
	}

	recipient := whatsapp.NormalizeNumber(req.To)

	result, err := s.provider.SendText(ctx, recipient, req.Body)
	if err != nil {
		return nil, err
	}

	messageID := result.MessageID
	if messageID == "" {
		// The provider response omitted an id; generate a local token so the
		// uniqueness invariant still holds.
		messageID = fmt.Sprintf("wamid-local-%d", s.now().UnixNano())
	}

	body := req.Body
	if _, err := s.store.UpsertMessage(ctx, store.CreateMessageParams{
		MessageID:    messageID,
		PhoneNumber:  recipient,
		FromNumber:   s.businessNumber,
		ToNumber:     recipient,
		Body:         &body,
		Direction:    models.DirectionOutbound,
		Status:       models.StatusSent,
		Timestamp:    s.now().UTC(),
		MessageType:  models.MessageTypeText,
		IsAIResponse: req.IsAIResponse,
		Metadata:     result.Raw,
	}); err != nil {
		// The provider accepted the message but we could not record it.
		log.Printf("ERROR [MessageService] SendMessage: message %s sent but not persisted: %v", messageID, err)
		return nil, &apperr.StoreError{Op: "persist outbound message", Err: err}
	}

	return &models.SendMessageResponse{Message: result.Raw, Success: true}, nil
}

// ListMessages returns the flat message list, newest first, shaped for the
// dashboard. Direction is normalized to "inbound" | "outbound-api".
func (s *MessageService) ListMessages(ctx context.Context) ([]models.MessageItem, error) {
	msgs, err := s.store.ListMessages(ctx, s.fetchLimit)
	if err != nil {
		return nil, &apperr.StoreError{Op: "list messages", Err: err}
	}

	items := make([]models.MessageItem, 0, len(msgs))
	for i := range msgs {
		items = append(items, mapMessageItem(&msgs[i]))
	}
	return items, nil
}

func mapMessageItem(m *models.Message) models.MessageItem {
	direction := m.Direction
	if direction == models.DirectionOutbound {
		direction = "outbound-api"
	}
	return models.MessageItem{
		SID:          m.MessageID,
		From:         m.FromNumber,
		To:           m.ToNumber,
		Body:         m.BodyText(),
		DateSent:     m.Timestamp,
		Status:       m.Status,
		Direction:    direction,
		MessageType:  m.MessageType,
		IsAIResponse: m.IsAIResponse,
	}
}
