package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"wadash-backend/internal/models"
	"wadash-backend/internal/store"

	"github.com/google/uuid"
)

// fakeStore is an in-memory store.Store with the same uniqueness and
// ordering semantics as the postgres implementation.
type fakeStore struct {
	mu          sync.Mutex
	messages    map[string]models.Message // keyed by message_id
	logs        []models.WebhookLog
	failUpsert  error
	failStatus  map[string]error // per message_id
	failList    error
	failHuman   error
	listCounter int
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages:   make(map[string]models.Message),
		failStatus: make(map[string]error),
	}
}

func (f *fakeStore) UpsertMessage(ctx context.Context, arg store.CreateMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpsert != nil {
		return false, f.failUpsert
	}
	if _, exists := f.messages[arg.MessageID]; exists {
		return false, nil
	}
	f.messages[arg.MessageID] = models.Message{
		ID:                     uuid.New(),
		MessageID:              arg.MessageID,
		PhoneNumber:            arg.PhoneNumber,
		FromNumber:             arg.FromNumber,
		ToNumber:               arg.ToNumber,
		Body:                   arg.Body,
		Direction:              arg.Direction,
		Status:                 arg.Status,
		Timestamp:              arg.Timestamp,
		MessageType:            arg.MessageType,
		MediaID:                arg.MediaID,
		MediaMimeType:          arg.MediaMimeType,
		Caption:                arg.Caption,
		IsAIResponse:           arg.IsAIResponse,
		ResponseLatencySeconds: arg.ResponseLatencySeconds,
		Metadata:               arg.Metadata,
		CreatedAt:              time.Now().UTC(),
	}
	return true, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCounter++
	if f.failList != nil {
		return nil, f.failList
	}

	out := make([]models.Message, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) UpdateMessageStatus(ctx context.Context, messageID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failStatus[messageID]; ok {
		return err
	}
	m, ok := f.messages[messageID]
	if !ok {
		return store.ErrNotFound
	}
	m.Status = status
	f.messages[messageID] = m
	return nil
}

func (f *fakeStore) GetLastHumanResponse(ctx context.Context, phoneNumber string, since time.Time) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failHuman != nil {
		return nil, f.failHuman
	}

	var best *models.Message
	for _, m := range f.messages {
		m := m
		if m.PhoneNumber != phoneNumber || m.Direction != models.DirectionOutbound || m.IsAIResponse {
			continue
		}
		if m.Timestamp.Before(since) {
			continue
		}
		if best == nil || m.Timestamp.After(best.Timestamp) {
			best = &m
		}
	}
	if best == nil {
		return nil, store.ErrNotFound
	}
	return best, nil
}

func (f *fakeStore) CreateWebhookLog(ctx context.Context, arg store.CreateWebhookLogParams) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	f.logs = append(f.logs, models.WebhookLog{
		ID:        id,
		EventType: arg.EventType,
		Payload:   arg.Payload,
		Processed: arg.Processed,
		Error:     arg.Error,
		CreatedAt: time.Now().UTC(),
	})
	return id, nil
}

func (f *fakeStore) ListWebhookLogs(ctx context.Context, limit int) ([]models.WebhookLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.WebhookLog, len(f.logs))
	copy(out, f.logs)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeStore) message(id string) (models.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	return m, ok
}

func (f *fakeStore) logEntries() []models.WebhookLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.WebhookLog, len(f.logs))
	copy(out, f.logs)
	return out
}

var errStoreDown = errors.New("store unavailable")
