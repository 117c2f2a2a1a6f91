package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/internal/services"
	log "github.com/sirupsen/logrus"
)

type captureRequest struct {
	OrderID string `json:"orderId"`
}

type PremiumHandler struct {
	Service *services.PremiumService
}

func NewPremiumHandler(service *services.PremiumService) *PremiumHandler {
	return &PremiumHandler{Service: service}
}

// GET /premium/status
func (h *PremiumHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := h.Service.GetStatus(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// POST /premium/create-subscription
func (h *PremiumHandler) CreateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := currentUserID(r); err != nil {
		writeError(w, r, err)
		return
	}
	order, err := h.Service.CreateSubscription(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// POST /premium/capture
func (h *PremiumHandler) CapturePaymentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req captureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.Service.CapturePayment(r.Context(), userID, req.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.WithField("userID", userID.Hex()).Info("Premium activated")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Premium activated",
		"premium": status,
	})
}

// POST /premium/cancel
func (h *PremiumHandler) CancelSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := h.Service.CancelSubscription(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Subscription canceled, premium stays active until it expires",
		"premium": status,
	})
}
