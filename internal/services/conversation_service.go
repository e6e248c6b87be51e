package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/cache"
	"wadash-backend/internal/models"
	"wadash-backend/internal/store"
)

// automatedReplyGap is the latency threshold under which an unflagged
// outbound reply is inferred to be machine-generated.
const automatedReplyGap = 30 * time.Second

// messagingWindow is the provider-imposed 24h window after the customer's
// last inbound message.
const messagingWindow = 24 * time.Hour

// ConversationService derives per-counterparty conversations from the flat
// message list. Everything here is recomputed on each read; the only state is
// the optional analytics snapshot cache.
type ConversationService struct {
	store      store.Store
	cache      cache.AnalyticsCache
	fetchLimit int
	now        func() time.Time
}

// NewConversationService creates the aggregator. analyticsCache may be nil to
// disable snapshotting.
func NewConversationService(st store.Store, analyticsCache cache.AnalyticsCache, fetchLimit int) *ConversationService {
	return &ConversationService{
		store:      st,
		cache:      analyticsCache,
		fetchLimit: fetchLimit,
		now:        time.Now,
	}
}

// ListConversations groups all stored messages by counterparty, newest
// conversation first, each conversation's messages newest first.
func (s *ConversationService) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	msgs, err := s.store.ListMessages(ctx, s.fetchLimit)
	if err != nil {
		return nil, &apperr.StoreError{Op: "list messages", Err: err}
	}
	return s.buildConversations(msgs), nil
}

func (s *ConversationService) buildConversations(msgs []models.Message) []models.Conversation {
	now := s.now().UTC()

	groups := make(map[string][]models.Message)
	for _, m := range msgs {
		key := m.CounterpartyNumber()
		groups[key] = append(groups[key], m)
	}

	conversations := make([]models.Conversation, 0, len(groups))
	for phone, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.After(group[j].Timestamp)
		})

		annotated := annotateReplies(group)

		conv := models.Conversation{
			PhoneNumber: phone,
			Messages:    annotated,
			LastMessage: &annotated[0],
		}

		last := &group[0]
		conv.OutsideWindow = last.Direction == models.DirectionInbound &&
			now.Sub(last.Timestamp) > messagingWindow
		conv.HumanActive = humanActiveIn(group, now)

		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.Timestamp.After(conversations[j].LastMessage.Timestamp)
	})

	return conversations
}

// annotateReplies maps a time-descending group to presentation messages,
// classifying each outbound reply. The stored is_ai_response flag is
// authoritative when set; the latency heuristic covers unflagged rows.
func annotateReplies(group []models.Message) []models.ConversationMessage {
	out := make([]models.ConversationMessage, len(group))
	for i := range group {
		m := &group[i]
		cm := models.ConversationMessage{
			MessageItem: mapMessageItem(m),
			Timestamp:   m.Timestamp,
		}
		if m.Direction == models.DirectionOutbound {
			cm.ReplyClass = classifyReply(group, i)
		}
		out[i] = cm
	}
	return out
}

// classifyReply decides automated vs human-authored for the outbound message
// at index i of a time-descending group. An outbound immediately following an
// inbound (the next element in descending order) with a gap under 30s is
// automated; business-initiated outbounds default to human-authored.
func classifyReply(group []models.Message, i int) string {
	if group[i].IsAIResponse {
		return models.ReplyAutomated
	}
	if i+1 < len(group) && group[i+1].Direction == models.DirectionInbound {
		gap := group[i].Timestamp.Sub(group[i+1].Timestamp)
		if gap >= 0 && gap < automatedReplyGap {
			return models.ReplyAutomated
		}
	}
	return models.ReplyHuman
}

// humanActiveIn reports whether a non-automated outbound message exists
// within the trailing gate window.
func humanActiveIn(group []models.Message, now time.Time) bool {
	cutoff := now.Add(-time.Duration(DefaultHumanActiveThresholdHours * float64(time.Hour)))
	for i := range group {
		m := &group[i]
		if m.Direction == models.DirectionOutbound && !m.IsAIResponse && m.Timestamp.After(cutoff) {
			return true
		}
	}
	return false
}

// FilterConversations applies the presentation filter and sort parameters.
// Pure function: the input slice is never mutated.
func (s *ConversationService) FilterConversations(conversations []models.Conversation, filter models.ConversationFilter) []models.Conversation {
	now := s.now().UTC()

	out := make([]models.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		if !matchesBucket(&conv, filter.Bucket, now) {
			continue
		}
		if !matchesQuery(&conv, filter.Query) {
			continue
		}
		out = append(out, conv)
	}

	switch filter.Sort {
	case models.SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMessage.Timestamp.Before(out[j].LastMessage.Timestamp)
		})
	case models.SortNewest, models.SortActive, "":
		// Input is already newest-first; most-recently-active is equivalent
		// under this data model.
	}

	return out
}

func matchesBucket(conv *models.Conversation, bucket string, now time.Time) bool {
	if bucket == "" || bucket == models.BucketAll {
		return true
	}
	age := now.Sub(conv.LastMessage.Timestamp)
	switch bucket {
	case models.Bucket4h:
		return age <= 4*time.Hour
	case models.Bucket8h:
		return age <= 8*time.Hour
	case models.Bucket24h:
		return age <= 24*time.Hour
	case models.BucketOver24h:
		return age > 24*time.Hour
	default:
		return true
	}
}

func matchesQuery(conv *models.Conversation, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(conv.PhoneNumber), q) {
		return true
	}
	for _, m := range conv.Messages {
		if strings.Contains(strings.ToLower(m.Body), q) {
			return true
		}
	}
	return false
}

// Analytics computes the dashboard rollup, served from the Redis snapshot
// when one is fresh. A cache failure degrades to a recompute, never an error.
func (s *ConversationService) Analytics(ctx context.Context) (*models.AnalyticsResponse, error) {
	if s.cache != nil {
		if snapshot, ok, err := s.cache.Get(ctx); err != nil {
			log.Printf("WARN [ConversationService] Analytics: cache read failed: %v", err)
		} else if ok {
			return snapshot, nil
		}
	}

	msgs, err := s.store.ListMessages(ctx, s.fetchLimit)
	if err != nil {
		return nil, &apperr.StoreError{Op: "list messages", Err: err}
	}

	result := s.computeAnalytics(msgs)

	if s.cache != nil {
		if err := s.cache.Store(ctx, result); err != nil {
			log.Printf("WARN [ConversationService] Analytics: cache write failed: %v", err)
		}
	}

	return result, nil
}

func (s *ConversationService) computeAnalytics(msgs []models.Message) *models.AnalyticsResponse {
	now := s.now().UTC()
	conversations := s.buildConversations(msgs)

	result := &models.AnalyticsResponse{
		TotalConversations: len(conversations),
		TotalMessages:      len(msgs),
	}

	for i := range msgs {
		age := now.Sub(msgs[i].Timestamp)
		if age <= 24*time.Hour {
			result.MessagesLast24h++
		}
		if age <= 7*24*time.Hour {
			result.MessagesLast7d++
		}
	}

	var latencySum float64
	var latencyCount int
	for _, conv := range conversations {
		for i, cm := range conv.Messages {
			switch cm.ReplyClass {
			case models.ReplyAutomated:
				result.AutomatedReplies++
			case models.ReplyHuman:
				result.HumanReplies++
			}
			// Response latency over adjacent inbound->outbound pairs,
			// regardless of classification.
			if cm.Direction == "outbound-api" && i+1 < len(conv.Messages) {
				prev := conv.Messages[i+1]
				if prev.Direction == models.DirectionInbound {
					latencySum += cm.Timestamp.Sub(prev.Timestamp).Seconds()
					latencyCount++
				}
			}
		}
	}
	if latencyCount > 0 {
		result.AvgResponseLatencySeconds = latencySum / float64(latencyCount)
	}

	return result
}
