package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityReviewCreated = "review_created"
	ActivityCommentAdded  = "comment_added"
	ActivityFollowed      = "followed"
	ActivityMovieWatched  = "movie_watched"
)

type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Username  string             `bson:"username" json:"username"`
	Type      string             `bson:"type" json:"type"`     // e.g. "review_created", "followed"
	Target    string             `bson:"target" json:"target"` // movie id, review id or user id
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Message   string             `bson:"message" json:"message"`
}
