package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/integrations/whatsapp"
	"wadash-backend/internal/models"
)

type fakeProvider struct {
	result *whatsapp.SendResult
	err    error
	calls  int
	lastTo string
}

func (p *fakeProvider) SendText(ctx context.Context, to, body string) (*whatsapp.SendResult, error) {
	p.calls++
	p.lastTo = to
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func TestSendMessage_PersistsOneOutboundRow(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	provider := &fakeProvider{
		result: &whatsapp.SendResult{
			MessageID: "wamid.ABC123",
			Raw:       json.RawMessage(`{"messages":[{"id":"wamid.ABC123"}]}`),
		},
	}
	svc := NewMessageService(st, provider, "15550001111", 1000)

	resp, err := svc.SendMessage(context.Background(), models.SendMessageRequest{
		To:   "+36 20 123 4567",
		Body: "hello",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected Success=true")
	}

	if st.messageCount() != 1 {
		t.Fatalf("expected 1 persisted row, got %d", st.messageCount())
	}
	m, ok := st.message("wamid.ABC123")
	if !ok {
		t.Fatal("expected row keyed by provider message id")
	}
	if m.Direction != models.DirectionOutbound {
		t.Fatalf("expected outbound direction, got %q", m.Direction)
	}
	if m.Status != models.StatusSent {
		t.Fatalf("expected status sent, got %q", m.Status)
	}
	if m.PhoneNumber != "36201234567" {
		t.Fatalf("expected normalized phone number, got %q", m.PhoneNumber)
	}
	if provider.lastTo != "36201234567" {
		t.Fatalf("expected normalized recipient sent to provider, got %q", provider.lastTo)
	}
	if m.IsAIResponse {
		t.Fatal("expected is_ai_response=false by default")
	}
	if string(m.Metadata) != `{"messages":[{"id":"wamid.ABC123"}]}` {
		t.Fatalf("expected raw provider response as metadata, got %s", m.Metadata)
	}
}

func TestSendMessage_GeneratesLocalIDWhenProviderOmitsOne(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	provider := &fakeProvider{result: &whatsapp.SendResult{Raw: json.RawMessage(`{}`)}}
	svc := NewMessageService(st, provider, "15550001111", 1000)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	if _, err := svc.SendMessage(context.Background(), models.SendMessageRequest{To: "123", Body: "hi"}); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if st.messageCount() != 1 {
		t.Fatalf("expected 1 row, got %d", st.messageCount())
	}
	if _, ok := st.message("wamid-local-1785585600000000000"); !ok {
		t.Fatal("expected locally generated message id")
	}
}

func TestSendMessage_RejectsEmptyBody(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	provider := &fakeProvider{}
	svc := NewMessageService(st, provider, "15550001111", 1000)

	_, err := svc.SendMessage(context.Background(), models.SendMessageRequest{To: "123", Body: ""})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called on validation failure")
	}
	if st.messageCount() != 0 {
		t.Fatal("no row may be persisted on validation failure")
	}
}

func TestSendMessage_RejectsEmptyRecipient(t *testing.T) {
	t.Parallel()

	svc := NewMessageService(newFakeStore(), &fakeProvider{}, "15550001111", 1000)
	_, err := svc.SendMessage(context.Background(), models.SendMessageRequest{To: "", Body: "hi"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendMessage_ProviderFailureLeavesNoRow(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	provider := &fakeProvider{err: &apperr.ProviderError{StatusCode: 400, Detail: "Recipient phone number not in allowed list"}}
	svc := NewMessageService(st, provider, "15550001111", 1000)

	_, err := svc.SendMessage(context.Background(), models.SendMessageRequest{To: "123", Body: "hi"})

	var providerErr *apperr.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.Detail != "Recipient phone number not in allowed list" {
		t.Fatalf("expected provider detail surfaced, got %q", providerErr.Detail)
	}
	if st.messageCount() != 0 {
		t.Fatal("no row may be persisted on provider failure")
	}
}

func TestListMessages_NormalizesDirectionAndBody(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	body := "hello there"
	mustUpsert(t, st, storeParams("wamid.in", "111", models.DirectionInbound, base, &body, false))

	imgParams := storeParams("wamid.img", "111", models.DirectionInbound, base.Add(time.Minute), nil, false)
	imgParams.MessageType = models.MessageTypeImage
	mustUpsert(t, st, imgParams)

	reply := "on it"
	mustUpsert(t, st, storeParams("wamid.out", "111", models.DirectionOutbound, base.Add(2*time.Minute), &reply, false))

	svc := NewMessageService(st, &fakeProvider{}, "15550001111", 1000)
	items, err := svc.ListMessages(context.Background())
	if err != nil {
		t.Fatalf("ListMessages() error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	// Newest first.
	if items[0].SID != "wamid.out" {
		t.Fatalf("expected newest first, got %q", items[0].SID)
	}
	if items[0].Direction != "outbound-api" {
		t.Fatalf("expected outbound-api normalization, got %q", items[0].Direction)
	}
	if items[1].Body != "[Image]" {
		t.Fatalf("expected media placeholder body, got %q", items[1].Body)
	}
	if items[2].Direction != models.DirectionInbound {
		t.Fatalf("expected inbound direction, got %q", items[2].Direction)
	}
}
