package services

import (
	"context"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/metadata"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/payment"
	"github.com/Dias221467/cometa-films-backend/internal/realtime"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stores return *apperrors.Error values for not-found and conflict outcomes so
// services can pass them straight through.

// UserStore reads and writes the user document as a whole.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update models.ProfileUpdate) (*models.User, error)
	ListUsers(ctx context.Context, exclude primitive.ObjectID, skip, limit int64) ([]models.User, int64, error)
	SearchUsers(ctx context.Context, exclude primitive.ObjectID, username string, limit int64) ([]models.User, error)
}

// WatchlistStore moves movie ids between the two embedded lists.
type WatchlistStore interface {
	AddToWatchlist(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error)
	RemoveFromWatchlist(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error)
	MarkWatched(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error)
	RemoveFromWatched(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error)
}

// FollowStore edits one side of a follow edge per call.
type FollowStore interface {
	AddFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error
	AddFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error
	ListFollowEdges(ctx context.Context) ([]models.FollowEdges, error)
}

// PremiumStore applies premium transitions atomically on one document.
type PremiumStore interface {
	ActivatePremium(ctx context.Context, id primitive.ObjectID, expiry time.Time, reference string, event models.PremiumEvent) error
	AppendPremiumEvent(ctx context.Context, id primitive.ObjectID, event models.PremiumEvent) error
}

// ReviewStore mutates reviews and comments with field-scoped operators.
type ReviewStore interface {
	InsertReview(ctx context.Context, userID primitive.ObjectID, review *models.Review) error
	UpdateReview(ctx context.Context, userID primitive.ObjectID, movieID string, rating int, comment string, author models.PublicUser, at time.Time) (*models.Review, error)
	DeleteReview(ctx context.Context, userID primitive.ObjectID, movieID string) error
	FindUsersWithMovieReview(ctx context.Context, movieID string) ([]models.User, error)
	FindReviewOwner(ctx context.Context, reviewID primitive.ObjectID) (*models.User, error)
	PushComment(ctx context.Context, ownerID, reviewID primitive.ObjectID, comment *models.Comment) error
	SetCommentText(ctx context.Context, ownerID, reviewID, commentID, authorID primitive.ObjectID, text string, at time.Time) error
	PullComment(ctx context.Context, ownerID, reviewID, commentID primitive.ObjectID) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	GetActivitiesByUsers(ctx context.Context, userIDs []primitive.ObjectID, limit int64) ([]models.Activity, error)
}

// Notifier delivers a notification to its recipient. Failures never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, notif *models.Notification) error
}

// ActivityRecorder appends to the activity feed.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, userID primitive.ObjectID, username, actionType, target, message string) error
}

// PaymentGateway creates and captures one-off premium orders.
type PaymentGateway interface {
	CreateOrder(ctx context.Context) (*payment.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*payment.Capture, error)
}

// MovieLookup resolves display data for movie ids and never fails.
type MovieLookup interface {
	GetMovie(ctx context.Context, movieID string) metadata.Movie
	GetMovies(ctx context.Context, movieIDs []string) []metadata.Movie
}

// Pusher is the realtime channel: fire-and-forget delivery to online users.
type Pusher interface {
	Send(userID string, event realtime.Event) bool
	IsOnline(userID string) bool
}
