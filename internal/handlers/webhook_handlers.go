package handlers

import (
	"io"
	"log"
	"net/http"

	"wadash-backend/internal/models"
	"wadash-backend/internal/services"
	"wadash-backend/pkg/httputil"
)

// WebhookHandlers receives provider callbacks: the verification handshake on
// GET and event deliveries on POST.
type WebhookHandlers struct {
	webhookService *services.WebhookService
}

func NewWebhookHandlers(ws *services.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{webhookService: ws}
}

// HandleVerify handles GET /webhook. The provider sends hub.mode,
// hub.verify_token and hub.challenge; on a match we echo the challenge.
func (h *WebhookHandlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	echo, ok := h.webhookService.VerifySubscription(mode, token, challenge)
	if !ok {
		log.Printf("[WebhookHandlers] HandleVerify: rejected handshake (mode=%q)", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(echo))
}

// HandleEvent handles POST /webhook. The response is always 200: signalling
// failure would trigger the provider's redelivery storm, so errors only show
// up in the ack body and the audit log.
func (h *WebhookHandlers) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("ERROR [WebhookHandlers] HandleEvent: failed to read body: %v", err)
		httputil.RespondJSON(w, http.StatusOK, models.WebhookAck{Status: "error"})
		return
	}
	defer r.Body.Close()

	status := "ok"
	if err := h.webhookService.ProcessEvent(r.Context(), body); err != nil {
		log.Printf("ERROR [WebhookHandlers] HandleEvent: %v", err)
		status = "error"
	}
	httputil.RespondJSON(w, http.StatusOK, models.WebhookAck{Status: status})
}
