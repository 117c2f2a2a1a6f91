package handlers

import (
	"net/http"

	"github.com/Dias221467/cometa-films-backend/pkg/middleware"
	"github.com/gorilla/mux"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Users         *UserHandler
	Movies        *MovieHandler
	Comments      *CommentHandler
	Social        *SocialHandler
	Premium       *PremiumHandler
	Notifications *NotificationHandler
	Activity      *ActivityHandler
	WS            *WSHandler
}

// NewRouter registers all routes. Everything except /health, /auth/register,
// /auth/login and /ws requires a bearer token.
func NewRouter(h Handlers, jwtSecret string) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.AuthMiddleware(jwtSecret)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Auth routes
	router.HandleFunc("/auth/register", h.Users.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/auth/login", h.Users.LoginUserHandler).Methods("POST")

	meRoutes := router.PathPrefix("/auth/me").Subrouter()
	meRoutes.Use(auth)
	meRoutes.HandleFunc("", h.Users.GetMeHandler).Methods("GET")
	meRoutes.HandleFunc("", h.Users.UpdateMeHandler).Methods("PATCH")

	// Watch lists and reviews
	movieRoutes := router.PathPrefix("/user-movies").Subrouter()
	movieRoutes.Use(auth)
	movieRoutes.HandleFunc("/profile", h.Movies.GetProfileHandler).Methods("GET")
	movieRoutes.HandleFunc("/watchlist", h.Movies.GetWatchlistHandler).Methods("GET")
	movieRoutes.HandleFunc("/watchlist", h.Movies.AddToWatchlistHandler).Methods("POST")
	movieRoutes.HandleFunc("/watchlist/{movieId}", h.Movies.RemoveFromWatchlistHandler).Methods("DELETE")
	movieRoutes.HandleFunc("/watched", h.Movies.GetWatchedHandler).Methods("GET")
	movieRoutes.HandleFunc("/watched", h.Movies.MarkWatchedHandler).Methods("POST")
	movieRoutes.HandleFunc("/watched/{movieId}", h.Movies.RemoveFromWatchedHandler).Methods("DELETE")
	movieRoutes.HandleFunc("/reviews", h.Movies.GetUserReviewsHandler).Methods("GET")
	movieRoutes.HandleFunc("/movies/{movieId}/reviews", h.Movies.GetMovieReviewsHandler).Methods("GET")
	movieRoutes.HandleFunc("/movies/{movieId}/reviews", h.Movies.AddReviewHandler).Methods("POST")
	movieRoutes.HandleFunc("/movies/{movieId}/reviews", h.Movies.UpdateReviewHandler).Methods("PUT")
	movieRoutes.HandleFunc("/movies/{movieId}/reviews", h.Movies.DeleteReviewHandler).Methods("DELETE")

	// Comment threads
	commentRoutes := router.PathPrefix("/reviews/{reviewId}/comments").Subrouter()
	commentRoutes.Use(auth)
	commentRoutes.HandleFunc("", h.Comments.GetCommentsHandler).Methods("GET")
	commentRoutes.HandleFunc("", h.Comments.AddCommentHandler).Methods("POST")
	commentRoutes.HandleFunc("/{commentId}", h.Comments.EditCommentHandler).Methods("PUT")
	commentRoutes.HandleFunc("/{commentId}", h.Comments.DeleteCommentHandler).Methods("DELETE")

	// Social graph
	socialRoutes := router.PathPrefix("/social").Subrouter()
	socialRoutes.Use(auth)
	socialRoutes.HandleFunc("/users", h.Social.ListUsersHandler).Methods("GET")
	socialRoutes.HandleFunc("/users/search", h.Social.SearchUsersHandler).Methods("GET")
	socialRoutes.HandleFunc("/users/{userId}", h.Social.GetPublicProfileHandler).Methods("GET")
	socialRoutes.HandleFunc("/users/{userId}/followers", h.Social.GetFollowersHandler).Methods("GET")
	socialRoutes.HandleFunc("/users/{userId}/following", h.Social.GetFollowingHandler).Methods("GET")
	socialRoutes.HandleFunc("/follow/{userId}", h.Social.FollowHandler).Methods("POST")
	socialRoutes.HandleFunc("/follow/{userId}", h.Social.UnfollowHandler).Methods("DELETE")

	// Premium
	premiumRoutes := router.PathPrefix("/premium").Subrouter()
	premiumRoutes.Use(auth)
	premiumRoutes.HandleFunc("/status", h.Premium.GetStatusHandler).Methods("GET")
	premiumRoutes.HandleFunc("/create-subscription", h.Premium.CreateSubscriptionHandler).Methods("POST")
	premiumRoutes.HandleFunc("/capture", h.Premium.CapturePaymentHandler).Methods("POST")
	premiumRoutes.HandleFunc("/cancel", h.Premium.CancelSubscriptionHandler).Methods("POST")

	// Notifications and feed
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(auth)
	notificationRoutes.HandleFunc("", h.Notifications.GetUserNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", h.Notifications.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", h.Notifications.DeleteNotificationHandler).Methods("DELETE")

	activityRoutes := router.PathPrefix("/activity").Subrouter()
	activityRoutes.Use(auth)
	activityRoutes.HandleFunc("/feed", h.Activity.GetFeedHandler).Methods("GET")

	router.HandleFunc("/ws", h.WS.ServeWSHandler).Methods("GET")

	router.Use(middleware.LoggingMiddleware)
	return router
}
