package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/cometa-films-backend/internal/services"
)

// SocialHandler serves user discovery and the follow graph under /social.
type SocialHandler struct {
	Service *services.SocialService
}

func NewSocialHandler(service *services.SocialService) *SocialHandler {
	return &SocialHandler{Service: service}
}

// GET /social/users?page=&limit=
func (h *SocialHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", services.DefaultPageSize)

	result, err := h.Service.ListUsers(r.Context(), viewerID, page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /social/users/search?username=
func (h *SocialHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Service.SearchUsers(r.Context(), viewerID, r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /social/users/{userId}
func (h *SocialHandler) GetPublicProfileHandler(w http.ResponseWriter, r *http.Request) {
	viewerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := h.Service.GetPublicProfile(r.Context(), viewerID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GET /social/users/{userId}/followers
func (h *SocialHandler) GetFollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Service.GetFollowers(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /social/users/{userId}/following
func (h *SocialHandler) GetFollowingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Service.GetFollowing(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// POST /social/follow/{userId}
func (h *SocialHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	targetID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.Follow(r.Context(), followerID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User followed")
}

// DELETE /social/follow/{userId}
func (h *SocialHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	targetID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.Unfollow(r.Context(), followerID, targetID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User unfollowed")
}

func queryInt(r *http.Request, key string, fallback int64) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
