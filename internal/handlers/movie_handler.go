package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/internal/services"
	"github.com/gorilla/mux"
)

type movieRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// MovieHandler serves the caller's watch lists and the movie reviews under
// /user-movies.
type MovieHandler struct {
	Lists   *services.WatchlistService
	Reviews *services.ReviewService
	Users   *services.UserService
}

func NewMovieHandler(lists *services.WatchlistService, reviews *services.ReviewService, users *services.UserService) *MovieHandler {
	return &MovieHandler{Lists: lists, Reviews: reviews, Users: users}
}

// GET /user-movies/profile
func (h *MovieHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// POST /user-movies/watchlist
func (h *MovieHandler) AddToWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req movieRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.Lists.AddToWatchlist(r.Context(), userID, req.MovieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Movie added to watchlist",
		"watchlist": list,
	})
}

// GET /user-movies/watchlist
func (h *MovieHandler) GetWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Lists.GetWatchlist(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DELETE /user-movies/watchlist/{movieId}
func (h *MovieHandler) RemoveFromWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Lists.RemoveFromWatchlist(r.Context(), userID, mux.Vars(r)["movieId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Movie removed from watchlist",
		"watchlist": list,
	})
}

// POST /user-movies/watched
func (h *MovieHandler) MarkWatchedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req movieRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Lists.MarkWatched(r.Context(), userID, req.MovieID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Movie marked as watched",
		"watchlist": user.Watchlist,
		"watched":   user.Watched,
	})
}

// GET /user-movies/watched
func (h *MovieHandler) GetWatchedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Lists.GetWatched(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DELETE /user-movies/watched/{movieId}
func (h *MovieHandler) RemoveFromWatchedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Lists.RemoveFromWatched(r.Context(), userID, mux.Vars(r)["movieId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Movie removed from watched",
		"watched": list,
	})
}

// POST /user-movies/movies/{movieId}/reviews
func (h *MovieHandler) AddReviewHandler(w http.ResponseWriter, r *http.Request) {
	h.writeReview(w, r, true)
}

// PUT /user-movies/movies/{movieId}/reviews
func (h *MovieHandler) UpdateReviewHandler(w http.ResponseWriter, r *http.Request) {
	h.writeReview(w, r, false)
}

func (h *MovieHandler) writeReview(w http.ResponseWriter, r *http.Request, create bool) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := services.ReviewInput{
		MovieID: mux.Vars(r)["movieId"],
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if create {
		review, err := h.Reviews.AddReview(r.Context(), userID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Review added",
			"review":  review,
		})
		return
	}

	review, err := h.Reviews.UpdateReview(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Review updated",
		"review":  review,
	})
}

// DELETE /user-movies/movies/{movieId}/reviews
func (h *MovieHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Reviews.DeleteReview(r.Context(), userID, mux.Vars(r)["movieId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Review deleted")
}

// GET /user-movies/movies/{movieId}/reviews
func (h *MovieHandler) GetMovieReviewsHandler(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.GetMovieReviews(r.Context(), mux.Vars(r)["movieId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// GET /user-movies/reviews
func (h *MovieHandler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	reviews, err := h.Reviews.GetUserReviews(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}
