package handlers

import (
	"log"
	"net/http"
	"strconv"

	"wadash-backend/internal/models"
	"wadash-backend/internal/services"
	"wadash-backend/internal/store"
	"wadash-backend/pkg/httputil"
)

// ConversationHandlers serves the derived conversation list, the analytics
// rollup and the webhook audit log.
type ConversationHandlers struct {
	conversationService *services.ConversationService
	store               store.Store
}

func NewConversationHandlers(cs *services.ConversationService, st store.Store) *ConversationHandlers {
	return &ConversationHandlers{conversationService: cs, store: st}
}

// HandleListConversations handles GET /conversations with optional bucket, q
// and sort query parameters.
func (h *ConversationHandlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversationService.ListConversations(r.Context())
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] HandleListConversations: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}

	filter := models.ConversationFilter{
		Bucket: r.URL.Query().Get("bucket"),
		Query:  r.URL.Query().Get("q"),
		Sort:   r.URL.Query().Get("sort"),
	}
	conversations = h.conversationService.FilterConversations(conversations, filter)

	httputil.RespondJSON(w, http.StatusOK, models.ListConversationsResponse{Conversations: conversations})
}

// HandleAnalytics handles GET /analytics.
func (h *ConversationHandlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.conversationService.Analytics(r.Context())
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] HandleAnalytics: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, analytics)
}

// HandleListWebhookLogs handles GET /webhook-logs, a diagnostics view over
// the audit trail.
func (h *ConversationHandlers) HandleListWebhookLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := h.store.ListWebhookLogs(r.Context(), limit)
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] HandleListWebhookLogs: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch webhook logs")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
