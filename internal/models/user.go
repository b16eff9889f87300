package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a stored blob reference. PublicID is the key used to release it.
type Image struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicId" bson:"publicId"`
}

// ProfilePicSnapshot is the author picture copied onto posts and comments
type ProfilePicSnapshot struct {
	URL string `json:"url" bson:"url"`
}

// User represents a registered student stored in MongoDB
type User struct {
	ID                      primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email                   string             `json:"email" bson:"email"`
	StudentName             string             `json:"studentname" bson:"studentname"`
	Password                string             `json:"-" bson:"password"` // bcrypt hash, never serialized
	ProfilePic              Image              `json:"profilePic" bson:"profilePic"`
	CollegeYear             string             `json:"college_year,omitempty" bson:"college_year,omitempty"`
	Department              string             `json:"department,omitempty" bson:"department,omitempty"`
	PostCount               int64              `json:"postCount" bson:"postCount"`
	ResolvedCount           int64              `json:"resolvedCount" bson:"resolvedCount"`
	UnresolvedCount         int64              `json:"unresolvedCount" bson:"unresolvedCount"`
	NotificationCount       int64              `json:"notificationCount" bson:"notificationCount"`
	LastViewedNotifications time.Time          `json:"lastViewedNotifications" bson:"lastViewedNotifications"`
	IsAdmin                 bool               `json:"isAdmin" bson:"isAdmin"`
	VerificationStatus      bool               `json:"verificationStatus" bson:"verificationStatus"`
	CreatedAt               time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt               time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// UserCompact is the author summary attached to listed posts
type UserCompact struct {
	ID                 primitive.ObjectID `json:"_id"`
	StudentName        string             `json:"studentname"`
	ProfilePic         Image              `json:"profilePic"`
	VerificationStatus bool               `json:"verificationStatus"`
	IsAdmin            bool               `json:"isAdmin"`
}

// ToCompact converts a User to its summary form
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:                 u.ID,
		StudentName:        u.StudentName,
		ProfilePic:         u.ProfilePic,
		VerificationStatus: u.VerificationStatus,
		IsAdmin:            u.IsAdmin,
	}
}

// RegisterRequest is the body of POST /api/auth/register (JSON or multipart)
type RegisterRequest struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	StudentName string `json:"studentname" form:"studentname" validate:"required,min=2,max=50"`
	Password    string `json:"password" form:"password" validate:"required,min=6"`
	CollegeYear string `json:"college_year" form:"college_year" validate:"omitempty,max=20"`
	Department  string `json:"department" form:"department" validate:"omitempty,max=80"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	StudentName string `json:"studentname" form:"studentname" validate:"required"`
	Password    string `json:"password" form:"password" validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/user/edit/:id. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Email       string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	StudentName string `json:"studentname,omitempty" form:"studentname" validate:"omitempty,min=2,max=50"`
	Password    string `json:"password,omitempty" form:"password" validate:"omitempty,min=6"`
	CollegeYear string `json:"college_year,omitempty" form:"college_year" validate:"omitempty,max=20"`
	Department  string `json:"department,omitempty" form:"department" validate:"omitempty,max=80"`
}

// VerificationRequest is the body of PUT /api/admin/users/:id/verification
type VerificationRequest struct {
	VerificationStatus *bool `json:"verificationStatus" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	ID          string `json:"id"`
	StudentName string `json:"studentname"`
	IsAdmin     bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
