package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification tells a post owner that someone commented on their post
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // recipient
	ActorID   primitive.ObjectID `json:"actorId" bson:"actorId"`
	ActorName string             `json:"actorName" bson:"actorName"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	CommentID primitive.ObjectID `json:"commentId" bson:"commentId"`
	Viewed    bool               `json:"viewed" bson:"viewed"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NotificationView is the list form returned to the recipient
type NotificationView struct {
	ID        primitive.ObjectID `json:"_id"`
	User      string             `json:"user"`
	PostID    primitive.ObjectID `json:"postId"`
	Post      string             `json:"post"`
	Comment   string             `json:"comment"`
	Message   string             `json:"message"`
	Viewed    bool               `json:"viewed"`
	CreatedAt time.Time          `json:"createdAt"`
}
