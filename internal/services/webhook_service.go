package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"wadash-backend/internal/models"
	"wadash-backend/internal/store"
)

// Webhook log event types.
const (
	eventTypeUnknown         = "unknown"
	eventTypeMessageReceived = "message_received"
	eventTypeStatusUpdate    = "status_update"
)

// WebhookService ingests provider callbacks. Every failure on this path is
// swallowed after being written to the audit log: the provider must always
// receive a success acknowledgment or it starts a redelivery storm.
type WebhookService struct {
	store       store.Store
	verifyToken string
}

func NewWebhookService(st store.Store, verifyToken string) *WebhookService {
	return &WebhookService{store: st, verifyToken: verifyToken}
}

// VerifySubscription implements the provider's verification handshake.
func (s *WebhookService) VerifySubscription(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && s.verifyToken != "" && token == s.verifyToken {
		return challenge, true
	}
	return "", false
}

// ProcessEvent handles one event delivery. The raw payload is logged before
// any parsing so that malformed payloads still leave an audit trail. The
// returned error only selects the ack body ("ok" vs "error"); the HTTP
// handler acknowledges with 200 either way.
func (s *WebhookService) ProcessEvent(ctx context.Context, raw []byte) error {
	var payload models.WebhookPayload
	parseErr := json.Unmarshal(raw, &payload)

	s.appendLog(ctx, fieldType(&payload, parseErr), raw, false, nil)

	if parseErr != nil {
		s.appendLog(ctx, eventTypeUnknown, raw, false, fmt.Errorf("unparseable payload: %w", parseErr))
		return parseErr
	}

	if err := s.process(ctx, &payload, raw); err != nil {
		s.appendLog(ctx, fieldType(&payload, nil), raw, false, err)
		return err
	}
	return nil
}

func (s *WebhookService) process(ctx context.Context, payload *models.WebhookPayload, raw []byte) error {
	if value := firstValueWithMessages(payload); value != nil {
		if err := s.handleInboundMessage(ctx, value); err != nil {
			return err
		}
		s.appendLog(ctx, eventTypeMessageReceived, raw, true, nil)
		return nil
	}

	if value := firstValueWithStatuses(payload); value != nil {
		s.handleStatusUpdates(ctx, value.Statuses)
		s.appendLog(ctx, eventTypeStatusUpdate, raw, true, nil)
		return nil
	}

	log.Printf("[WebhookService] ProcessEvent: no message or status entries, ignoring")
	return nil
}

// handleInboundMessage persists the first message entry of the delivery.
// Upsert-or-ignore on message_id makes redelivery a no-op.
func (s *WebhookService) handleInboundMessage(ctx context.Context, value *models.ChangeValue) error {
	msg := &value.Messages[0]

	ts, err := parseEpochSeconds(msg.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid message timestamp %q: %w", msg.Timestamp, err)
	}

	body := inboundBody(msg)
	var mediaID, mediaMime, caption *string
	if media := msg.Media(); media != nil {
		if media.ID != "" {
			mediaID = &media.ID
		}
		if media.MimeType != "" {
			mediaMime = &media.MimeType
		}
		if media.Caption != "" {
			caption = &media.Caption
		}
	}

	metadata, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message metadata: %w", err)
	}

	inserted, err := s.store.UpsertMessage(ctx, store.CreateMessageParams{
		MessageID:     msg.ID,
		PhoneNumber:   msg.From,
		FromNumber:    msg.From,
		ToNumber:      value.Metadata.DisplayPhoneNumber,
		Body:          &body,
		Direction:     models.DirectionInbound,
		Status:        models.StatusReceived,
		Timestamp:     ts,
		MessageType:   msg.Type,
		MediaID:       mediaID,
		MediaMimeType: mediaMime,
		Caption:       caption,
		IsAIResponse:  false,
		Metadata:      metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to persist inbound message %s: %w", msg.ID, err)
	}
	if !inserted {
		log.Printf("[WebhookService] handleInboundMessage: duplicate delivery of %s ignored", msg.ID)
	}
	return nil
}

// handleStatusUpdates applies each update independently; a failure on one
// entry never aborts the remaining updates.
func (s *WebhookService) handleStatusUpdates(ctx context.Context, statuses []models.StatusUpdate) {
	for _, st := range statuses {
		if err := s.store.UpdateMessageStatus(ctx, st.ID, st.Status); err != nil {
			log.Printf("WARN [WebhookService] handleStatusUpdates: failed to update %s to %q: %v", st.ID, st.Status, err)
		}
	}
}

// appendLog writes an audit row. Audit failures are logged and otherwise
// ignored; they must not take down the ingestion path.
func (s *WebhookService) appendLog(ctx context.Context, eventType string, payload []byte, processed bool, cause error) {
	var errText *string
	if cause != nil {
		t := cause.Error()
		errText = &t
	}
	if _, err := s.store.CreateWebhookLog(ctx, store.CreateWebhookLogParams{
		EventType: eventType,
		Payload:   payload,
		Processed: processed,
		Error:     errText,
	}); err != nil {
		log.Printf("ERROR [WebhookService] appendLog: failed to write audit row (%s): %v", eventType, err)
	}
}

// inboundBody renders the stored body for an incoming message according to
// its type: literal text, caption when present, else a bracketed placeholder.
func inboundBody(msg *models.IncomingMessage) string {
	switch msg.Type {
	case models.MessageTypeText:
		if msg.Text != nil {
			return msg.Text.Body
		}
		return ""
	case models.MessageTypeImage, models.MessageTypeVideo, models.MessageTypeDocument:
		if media := msg.Media(); media != nil && media.Caption != "" {
			return media.Caption
		}
		return placeholderFor(msg.Type)
	case models.MessageTypeAudio:
		return placeholderFor(msg.Type)
	default:
		return placeholderFor(msg.Type)
	}
}

func placeholderFor(messageType string) string {
	switch messageType {
	case models.MessageTypeImage:
		return "[Image]"
	case models.MessageTypeVideo:
		return "[Video]"
	case models.MessageTypeAudio:
		return "[Audio]"
	case models.MessageTypeDocument:
		return "[Document]"
	default:
		return "[" + messageType + "]"
	}
}

func parseEpochSeconds(raw string) (time.Time, error) {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0).UTC(), nil
}

// fieldType tags the audit row with the change field of the delivery, or
// "unknown" when the envelope is missing or unparseable.
func fieldType(payload *models.WebhookPayload, parseErr error) string {
	if parseErr != nil || len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return eventTypeUnknown
	}
	if f := payload.Entry[0].Changes[0].Field; f != "" {
		return f
	}
	return eventTypeUnknown
}

func firstValueWithMessages(payload *models.WebhookPayload) *models.ChangeValue {
	for i := range payload.Entry {
		for j := range payload.Entry[i].Changes {
			v := &payload.Entry[i].Changes[j].Value
			if len(v.Messages) > 0 {
				return v
			}
		}
	}
	return nil
}

func firstValueWithStatuses(payload *models.WebhookPayload) *models.ChangeValue {
	for i := range payload.Entry {
		for j := range payload.Entry[i].Changes {
			v := &payload.Entry[i].Changes[j].Value
			if len(v.Statuses) > 0 {
				return v
			}
		}
	}
	return nil
}
