package handlers

import (
	"fmt"
	"log"
	"net/http"

	"wadash-backend/internal/models"
	"wadash-backend/internal/services"
	"wadash-backend/pkg/httputil"
)

// HumanActivityHandlers serves the gate endpoint used by the automation agent
// to decide whether it may reply.
type HumanActivityHandlers struct {
	humanActivityService *services.HumanActivityService
}

func NewHumanActivityHandlers(has *services.HumanActivityService) *HumanActivityHandlers {
	return &HumanActivityHandlers{humanActivityService: has}
}

// HandleCheckHuman handles GET /check-human?phone=<id>.
func (h *HumanActivityHandlers) HandleCheckHuman(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		httputil.RespondError(w, http.StatusBadRequest, "phone query parameter is required")
		return
	}

	result, err := h.humanActivityService.CheckHumanActive(r.Context(), phone, services.DefaultHumanActiveThresholdHours)
	if err != nil {
		log.Printf("ERROR [HumanActivityHandlers] HandleCheckHuman: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to check human activity")
		return
	}

	message := "No recent human activity"
	if result.Active {
		message = fmt.Sprintf("Human agent active - automation should defer for %.2f more hours", result.HoursRemaining)
	}

	httputil.RespondJSON(w, http.StatusOK, models.CheckHumanResponse{
		PhoneNumber:           phone,
		HumanActive:           result.Active,
		LastHumanResponseTime: result.LastResponseTime,
		HoursRemaining:        result.HoursRemaining,
		Message:               message,
	})
}
