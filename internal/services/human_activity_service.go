package services

import (
	"context"
	"errors"
	"math"
	"time"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/integrations/whatsapp"
	"wadash-backend/internal/store"
)

// DefaultHumanActiveThresholdHours is the trailing lookback window for the
// human-activity gate.
const DefaultHumanActiveThresholdHours = 2.0

// HumanActivityResult answers whether a human agent replied recently enough
// that automation should defer.
type HumanActivityResult struct {
	Active           bool
	LastResponseTime *time.Time
	HoursRemaining   float64
}

// HumanActivityService computes the human-active gate. Pure read path, safe
// to call at arbitrary frequency.
type HumanActivityService struct {
	store store.Store
	now   func() time.Time
}

func NewHumanActivityService(st store.Store) *HumanActivityService {
	return &HumanActivityService{store: st, now: time.Now}
}

// CheckHumanActive looks for the most recent outbound, non-automated message
// to the counterparty within the trailing threshold window. HoursRemaining is
// reported to two decimal places and never increases without a newer human
// reply.
func (s *HumanActivityService) CheckHumanActive(ctx context.Context, phoneNumber string, thresholdHours float64) (*HumanActivityResult, error) {
	if thresholdHours <= 0 {
		thresholdHours = DefaultHumanActiveThresholdHours
	}

	phone := whatsapp.NormalizeNumber(phoneNumber)
	now := s.now().UTC()
	since := now.Add(-time.Duration(thresholdHours * float64(time.Hour)))

	msg, err := s.store.GetLastHumanResponse(ctx, phone, since)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &HumanActivityResult{Active: false, HoursRemaining: 0}, nil
		}
		return nil, &apperr.StoreError{Op: "query last human response", Err: err}
	}

	hoursElapsed := now.Sub(msg.Timestamp).Hours()
	hoursRemaining := math.Max(0, thresholdHours-hoursElapsed)
	hoursRemaining = math.Round(hoursRemaining*100) / 100

	ts := msg.Timestamp
	return &HumanActivityResult{
		Active:           hoursRemaining > 0,
		LastResponseTime: &ts,
		HoursRemaining:   hoursRemaining,
	}, nil
}
