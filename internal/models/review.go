package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating        = 1
	MaxRating        = 10
	MaxCommentLength = 500
)

// Review lives inside its author's user document. Username and Avatar are a
// snapshot of the author taken on the last write of the review.
type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	MovieID   string             `bson:"movie_id" json:"movieId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Username  string             `bson:"username" json:"username"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
	Comments  []Comment          `bson:"comments" json:"comments"`
}

// Comment is stored inside the review it answers, so it physically lives in
// the review author's document even when someone else wrote it.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	ParentID  *string            `bson:"parent_id,omitempty" json:"parentId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	IsEdited  bool               `bson:"is_edited" json:"isEdited"`
	EditedAt  *time.Time         `bson:"edited_at,omitempty" json:"editedAt,omitempty"`
}

// FindComment returns the comment with the given id, or nil.
func (r *Review) FindComment(id primitive.ObjectID) *Comment {
	for i := range r.Comments {
		if r.Comments[i].ID == id {
			return &r.Comments[i]
		}
	}
	return nil
}
