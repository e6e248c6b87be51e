package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"wadash-backend/internal/apperr"
	"wadash-backend/internal/models"
	"wadash-backend/internal/services"
	"wadash-backend/pkg/httputil"
)

// MessageHandlers serves the flat message list and the send endpoint.
type MessageHandlers struct {
	messageService *services.MessageService
}

func NewMessageHandlers(ms *services.MessageService) *MessageHandlers {
	return &MessageHandlers{messageService: ms}
}

// HandleListMessages handles GET /messages.
func (h *MessageHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	items, err := h.messageService.ListMessages(r.Context())
	if err != nil {
		log.Printf("ERROR [MessageHandlers] HandleListMessages: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, models.ListMessagesResponse{Messages: items})
}

// HandleSendMessage handles POST /messages/send.
func (h *MessageHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.messageService.SendMessage(r.Context(), req)
	if err != nil {
		respondSendError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// respondSendError maps the error taxonomy to HTTP statuses. Provider detail
// is surfaced to the caller; store detail is not.
func respondSendError(w http.ResponseWriter, err error) {
	var providerErr *apperr.ProviderError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrConfig):
		log.Printf("ERROR [MessageHandlers] send not configured: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Messaging provider is not configured")
	case errors.As(err, &providerErr):
		httputil.RespondErrorDetails(w, http.StatusBadGateway, "Provider rejected the message", providerErr.Detail)
	default:
		log.Printf("ERROR [MessageHandlers] HandleSendMessage: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to send message")
	}
}
