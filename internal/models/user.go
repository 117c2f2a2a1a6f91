package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAvatar is assigned when a user registers without picking one.
const DefaultAvatar = "avatar1"

// Avatars lists the avatar identifiers a user may choose from.
var Avatars = map[string]struct{}{
	"avatar1": {}, "avatar2": {}, "avatar3": {}, "avatar4": {},
	"avatar5": {}, "avatar6": {}, "avatar7": {}, "avatar8": {},
}

// User is the root document of the users collection. Watch lists, reviews
// (with their comments) and follow edges are embedded in it.
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username         string               `bson:"username" json:"username"`
	Email            string               `bson:"email" json:"email"`
	HashedPassword   string               `bson:"hashed_password" json:"-"`
	Avatar           string               `bson:"avatar" json:"avatar"`
	Watchlist        []MovieEntry         `bson:"watchlist" json:"watchlist"`
	Watched          []MovieEntry         `bson:"watched" json:"watched"`
	Reviews          []Review             `bson:"reviews" json:"reviews"`
	Following        []primitive.ObjectID `bson:"following" json:"following"`
	Followers        []primitive.ObjectID `bson:"followers" json:"followers"`
	IsPremium        bool                 `bson:"is_premium" json:"isPremium"`
	PremiumExpiry    *time.Time           `bson:"premium_expiry,omitempty" json:"premiumExpiry,omitempty"`
	PaymentReference string               `bson:"payment_reference,omitempty" json:"-"`
	PremiumHistory   []PremiumEvent       `bson:"premium_history" json:"premiumHistory"`
	Version          int64                `bson:"version" json:"-"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

// MovieEntry is one element of the watchlist or the watched list.
type MovieEntry struct {
	MovieID string    `bson:"movie_id" json:"movieId"`
	AddedAt time.Time `bson:"added_at" json:"addedAt"`
}

// PremiumEvent is an entry of the append-only premium history.
type PremiumEvent struct {
	Action  string    `bson:"action" json:"action"`
	Date    time.Time `bson:"date" json:"date"`
	Details string    `bson:"details" json:"details"`
}

const (
	PremiumSubscribed = "subscribed"
	PremiumCanceled   = "canceled"
)

// ProfileUpdate holds the optional profile fields a user may change.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
}

// FollowEdges is the projection of a user used to audit the follow graph.
type FollowEdges struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Following []primitive.ObjectID `bson:"following"`
	Followers []primitive.ObjectID `bson:"followers"`
}

// PublicUser is the minimal representation of another user.
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Avatar   string             `json:"avatar"`
}

// IsFollowing reports whether u follows target.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	return containsID(u.Following, target)
}

// ReviewForMovie returns u's review of movieID, or nil.
func (u *User) ReviewForMovie(movieID string) *Review {
	for i := range u.Reviews {
		if u.Reviews[i].MovieID == movieID {
			return &u.Reviews[i]
		}
	}
	return nil
}

// FindReview returns the embedded review with the given id, or nil.
func (u *User) FindReview(id primitive.ObjectID) *Review {
	for i := range u.Reviews {
		if u.Reviews[i].ID == id {
			return &u.Reviews[i]
		}
	}
	return nil
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// EnsureCollections replaces nil slices with empty ones. Array update
// operators fail on fields stored as null, so documents are always written
// with empty arrays.
func (u *User) EnsureCollections() {
	if u.Watchlist == nil {
		u.Watchlist = []MovieEntry{}
	}
	if u.Watched == nil {
		u.Watched = []MovieEntry{}
	}
	if u.Reviews == nil {
		u.Reviews = []Review{}
	}
	for i := range u.Reviews {
		if u.Reviews[i].Comments == nil {
			u.Reviews[i].Comments = []Comment{}
		}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.PremiumHistory == nil {
		u.PremiumHistory = []PremiumEvent{}
	}
}
