package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post
type Comment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PostID         primitive.ObjectID `json:"postId" bson:"postId"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	StudentName    string             `json:"studentname" bson:"studentname"`
	UserProfilePic ProfilePicSnapshot `json:"userProfilePic" bson:"userProfilePic"`
	Text           string             `json:"text" bson:"text"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CommentView adds the commenter's verification badge
type CommentView struct {
	Comment
	VerificationStatus bool `json:"verificationStatus"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" form:"text" validate:"required,min=1,max=1000"`
}
