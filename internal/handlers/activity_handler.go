package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/internal/services"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /activity/feed?limit=
func (h *ActivityHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	feed, err := h.Service.GetFeed(r.Context(), userID, queryInt(r, "limit", services.DefaultFeedLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
