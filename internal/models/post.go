package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType tells whether a post reports a lost or a found item
type ItemType string

const (
	ItemLost  ItemType = "LOST"
	ItemFound ItemType = "FOUND"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == ItemLost || t == ItemFound
}

// PostStatus tracks whether the item has been returned
type PostStatus string

const (
	StatusResolved   PostStatus = "RESOLVED"
	StatusUnresolved PostStatus = "UNRESOLVED"
)

// Valid reports whether s is a known status
func (s PostStatus) Valid() bool {
	return s == StatusResolved || s == StatusUnresolved
}

// MaxPostImages is the number of images a post may carry
const MaxPostImages = 3

// Post represents a lost or found item report stored in MongoDB
type Post struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	StudentName    string             `json:"studentname" bson:"studentname"`
	UserProfilePic ProfilePicSnapshot `json:"userProfilePic" bson:"userProfilePic"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description" bson:"description"`
	Category       string             `json:"category" bson:"category"`
	CollegeYear    string             `json:"college_year" bson:"college_year"`
	Department     string             `json:"department" bson:"department"`
	ItemType       ItemType           `json:"itemType" bson:"itemType"`
	Images         []Image            `json:"images" bson:"images"`
	Status         PostStatus         `json:"status" bson:"status"`
	Tags           []string           `json:"tags" bson:"tags"`
	Views          int64              `json:"views" bson:"views"`
	CommentCount   int64              `json:"commentCount" bson:"commentCount"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PostView is a post enriched with its author's summary
type PostView struct {
	Post
	Author *UserCompact `json:"author,omitempty"`
}

// CreatePostRequest is the form body of POST /api/post. Images come as multipart files.
type CreatePostRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=120"`
	Description string `json:"description" form:"description" validate:"required,max=2000"`
	Category    string `json:"category" form:"category" validate:"required,max=60"`
	CollegeYear string `json:"college_year" form:"college_year" validate:"required,max=20"`
	Department  string `json:"department" form:"department" validate:"required,max=80"`
	ItemType    string `json:"itemType" form:"itemType" validate:"required"`
	Tags        string `json:"tags" form:"tags"`
}

// UpdatePostRequest is the form body of PUT /api/post/:id. Empty fields are left unchanged.
// ExistingImages is a JSON array of the images to keep; absent means keep all.
type UpdatePostRequest struct {
	Title          string `json:"title,omitempty" form:"title" validate:"omitempty,max=120"`
	Description    string `json:"description,omitempty" form:"description" validate:"omitempty,max=2000"`
	Category       string `json:"category,omitempty" form:"category" validate:"omitempty,max=60"`
	CollegeYear    string `json:"college_year,omitempty" form:"college_year" validate:"omitempty,max=20"`
	Department     string `json:"department,omitempty" form:"department" validate:"omitempty,max=80"`
	ItemType       string `json:"itemType,omitempty" form:"itemType"`
	Status         string `json:"status,omitempty" form:"status"`
	Tags           string `json:"tags,omitempty" form:"tags"`
	ExistingImages string `json:"existingImages,omitempty" form:"existingImages"`
}
