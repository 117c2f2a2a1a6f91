package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/internal/services"
)

type commentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parentId"`
}

// CommentHandler serves the comment thread of a review.
type CommentHandler struct {
	Service *services.ReviewService
}

func NewCommentHandler(service *services.ReviewService) *CommentHandler {
	return &CommentHandler{Service: service}
}

// GET /reviews/{reviewId}/comments
func (h *CommentHandler) GetCommentsHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.Service.GetComments(r.Context(), reviewID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// POST /reviews/{reviewId}/comments
func (h *CommentHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), reviewID, userID, req.Text, req.ParentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added",
		"comment": comment,
	})
}

// PUT /reviews/{reviewId}/comments/{commentId}
func (h *CommentHandler) EditCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	comment, err := h.Service.EditComment(r.Context(), reviewID, commentID, userID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Comment updated",
		"comment": comment,
	})
}

// DELETE /reviews/{reviewId}/comments/{commentId}
func (h *CommentHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Service.DeleteComment(r.Context(), reviewID, commentID, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted")
}
