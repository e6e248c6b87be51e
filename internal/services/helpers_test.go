package services

import (
	"context"
	"testing"
	"time"

	"wadash-backend/internal/models"
	"wadash-backend/internal/store"
)

const testBusinessNumber = "15550001111"

// storeParams builds message params with direction-appropriate from/to fields.
func storeParams(messageID, phone, direction string, ts time.Time, body *string, isAI bool) store.CreateMessageParams {
	p := store.CreateMessageParams{
		MessageID:    messageID,
		PhoneNumber:  phone,
		Direction:    direction,
		Timestamp:    ts,
		MessageType:  models.MessageTypeText,
		Body:         body,
		IsAIResponse: isAI,
	}
	if direction == models.DirectionInbound {
		p.FromNumber = phone
		p.ToNumber = testBusinessNumber
		p.Status = models.StatusReceived
	} else {
		p.FromNumber = testBusinessNumber
		p.ToNumber = phone
		p.Status = models.StatusSent
	}
	return p
}

func mustUpsert(t *testing.T, st *fakeStore, arg store.CreateMessageParams) {
	t.Helper()
	if _, err := st.UpsertMessage(context.Background(), arg); err != nil {
		t.Fatalf("UpsertMessage(%s) error: %v", arg.MessageID, err)
	}
}

func strptr(s string) *string { return &s }
