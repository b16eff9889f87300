package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/auth"
	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserService reads, edits and deletes accounts
type UserService struct {
	*base
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.Users.GetUserByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// Stats counts posts and comments for one user, or for the whole board when userID is nil
func (s *UserService) Stats(ctx context.Context, userID *primitive.ObjectID) (*models.Stats, error) {
	var stats models.Stats
	var err error
	if stats.TotalPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{UserID: userID}); err != nil {
		return nil, err
	}
	if stats.ResolvedPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{UserID: userID, Status: models.StatusResolved}); err != nil {
		return nil, err
	}
	if stats.UnresolvedPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{UserID: userID, Status: models.StatusUnresolved}); err != nil {
		return nil, err
	}
	if stats.TotalComments, err = s.Comments.CountComments(ctx, repositories.CommentFilter{UserID: userID}); err != nil {
		return nil, err
	}
	return &stats, nil
}

// EditUser changes profile fields. Empty fields are kept. A new profile
// picture replaces the old one, which is released once the update is saved.
func (s *UserService) EditUser(ctx context.Context, actorID, targetID primitive.ObjectID, req models.UpdateUserRequest, profilePic *storage.File) (*models.User, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := access.CanEditUser(actor, user); err != nil {
		return nil, err
	}

	oldPic := user.ProfilePic
	authorChanged := false

	if name := strings.TrimSpace(req.StudentName); name != "" && name != user.StudentName {
		if other, err := s.Users.GetUserByStudentName(ctx, name); err == nil && other.ID != user.ID {
			return nil, conflict("Username already exists")
		} else if err != nil && !isNotFound(err) {
			return nil, err
		}
		user.StudentName = name
		authorChanged = true
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if other, err := s.Users.GetUserByEmail(ctx, email); err == nil && other.ID != user.ID {
			return nil, conflict("Email already registered")
		} else if err != nil && !isNotFound(err) {
			return nil, err
		}
		user.Email = email
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if v := strings.TrimSpace(req.CollegeYear); v != "" {
		user.CollegeYear = v
	}
	if v := strings.TrimSpace(req.Department); v != "" {
		user.Department = v
	}
	if profilePic != nil {
		img, err := s.Blobs.Upload(ctx, storage.FolderProfiles, *profilePic)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = img
		authorChanged = true
	}

	if err := s.Users.UpdateProfile(ctx, user); err != nil {
		if profilePic != nil {
			s.releaseBlobs(ctx, []models.Image{user.ProfilePic})
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Email or username already registered")
		}
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, err
	}

	if profilePic != nil && oldPic.PublicID != "" {
		s.releaseBlobs(ctx, []models.Image{oldPic})
	}
	if authorChanged {
		if err := s.Posts.UpdateAuthor(ctx, user.ID, user.StudentName, user.ProfilePic.URL); err != nil {
			s.log.Warn("failed to refresh author on posts", zap.String("userId", user.ID.Hex()), zap.Error(err))
		}
		if err := s.Comments.UpdateAuthor(ctx, user.ID, user.StudentName, user.ProfilePic.URL); err != nil {
			s.log.Warn("failed to refresh author on comments", zap.String("userId", user.ID.Hex()), zap.Error(err))
		}
	}
	return user, nil
}

// DeleteUser deletes an account and everything it owns. Users may delete
// themselves; admins may delete non-admins.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	return s.deleteUser(ctx, actor, targetID)
}

func (b *base) deleteUser(ctx context.Context, actor access.Actor, targetID primitive.ObjectID) error {
	unlock, err := b.lock(ctx, locks.UserDeletionKey(targetID))
	if err != nil {
		return err
	}
	defer unlock()

	user, err := b.Users.GetUserByID(ctx, targetID)
	if err != nil {
		if isNotFound(err) {
			return notFound("User not found")
		}
		return err
	}
	if err := access.CanDeleteUser(actor, user); err != nil {
		return err
	}

	plan, err := b.userDeletionPlan(ctx, user)
	if err != nil {
		return err
	}
	if err := b.execute(ctx, plan); err != nil {
		return err
	}

	b.log.Info("user deleted", zap.String("userId", targetID.Hex()), zap.String("by", actor.ID.Hex()))
	b.audit(ctx, actor, models.AuditDeleteUser, "user", targetID, user.StudentName)
	return nil
}
