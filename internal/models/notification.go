package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationNewFollower = "new_follower"
	NotificationNewComment  = "new_comment"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`                       // recipient
	ActorID   primitive.ObjectID  `bson:"actor_id" json:"actorId"`                     // who triggered it
	Type      string              `bson:"type" json:"type"`                            // e.g. "new_follower", "new_comment"
	Title     string              `bson:"title" json:"title"`                          // Short headline
	Message   string              `bson:"message" json:"message"`                      // Descriptive content
	Read      bool                `bson:"read" json:"read"`                            // True if user viewed it
	TargetID  *primitive.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"` // review or user it refers to
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time           `bson:"expires_at" json:"expiresAt"` // For auto-deletion after 7 days
}
