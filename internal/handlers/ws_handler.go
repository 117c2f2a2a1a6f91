package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/internal/realtime"
	jwtutil "github.com/Dias221467/cometa-films-backend/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

// WSHandler opens the realtime channel. Browsers cannot set headers on a
// websocket handshake, so the token travels in the query string.
type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// GET /ws?token=
func (h *WSHandler) ServeWSHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Debug("WebSocket auth failed")
		writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	h.Hub.ServeWS(w, r, claims.UserID)
}
