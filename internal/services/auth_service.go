package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/campustrack/backend/internal/auth"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthService registers and authenticates users
type AuthService struct {
	*base
	secret      []byte
	ttl         time.Duration
	adminEmails map[string]bool
}

// Register creates an account. Admin rights come from the configured admin
// emails only. profilePic is optional.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, profilePic *storage.File) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.StudentName)
	if email == "" || name == "" || req.Password == "" {
		return nil, invalid("Email, studentname and password are required")
	}

	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, conflict("Email already registered")
	} else if !isNotFound(err) {
		return nil, err
	}
	if _, err := s.Users.GetUserByStudentName(ctx, name); err == nil {
		return nil, conflict("Username already exists")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		StudentName: name,
		Password:    hash,
		CollegeYear: strings.TrimSpace(req.CollegeYear),
		Department:  strings.TrimSpace(req.Department),
		IsAdmin:     s.adminEmails[email],
	}
	if profilePic != nil {
		img, err := s.Blobs.Upload(ctx, storage.FolderProfiles, *profilePic)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = img
	}

	if err := s.Users.CreateUser(ctx, user); err != nil {
		s.releaseBlobs(ctx, []models.Image{user.ProfilePic})
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Email or username already registered")
		}
		return nil, err
	}
	s.log.Info("user registered", zap.String("userId", user.ID.Hex()), zap.Bool("admin", user.IsAdmin))
	return s.issue(user)
}

// Login checks a display name and password
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.Users.GetUserByStudentName(ctx, strings.TrimSpace(req.StudentName))
	if err != nil {
		if isNotFound(err) {
			return nil, unauthorized("Invalid studentname or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, unauthorized("Invalid studentname or password")
	}
	return s.issue(user)
}

// Current returns the user behind a verified token
func (s *AuthService) Current(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	_, user, err := s.actor(ctx, id)
	return user, err
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := auth.GenerateToken(user, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
