package services

import (
	"context"
	"fmt"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditPageSize = 100

// AdminService holds moderation operations. Every method re-checks that
// the actor is an admin.
type AdminService struct {
	*base
}

func (s *AdminService) admin(ctx context.Context, actorID primitive.ObjectID) (access.Actor, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return access.Actor{}, err
	}
	if err := access.RequireAdmin(actor); err != nil {
		return access.Actor{}, err
	}
	return actor, nil
}

// ListUsers returns every account
func (s *AdminService) ListUsers(ctx context.Context, actorID primitive.ObjectID) ([]models.User, error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.Users.GetUsers(ctx)
	if users == nil {
		users = []models.User{}
	}
	return users, err
}

// ListPosts returns every post
func (s *AdminService) ListPosts(ctx context.Context, actorID primitive.ObjectID) ([]models.Post, error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	posts, err := s.Posts.GetAllPosts(ctx, 0, 0)
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, err
}

// Stats counts every collection
func (s *AdminService) Stats(ctx context.Context, actorID primitive.ObjectID) (*models.AdminStats, error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	var stats models.AdminStats
	var err error
	if stats.TotalUsers, err = s.Users.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{}); err != nil {
		return nil, err
	}
	if stats.ResolvedPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{Status: models.StatusResolved}); err != nil {
		return nil, err
	}
	if stats.UnresolvedPosts, err = s.Posts.CountPosts(ctx, repositories.PostFilter{Status: models.StatusUnresolved}); err != nil {
		return nil, err
	}
	if stats.TotalComments, err = s.Comments.CountComments(ctx, repositories.CommentFilter{}); err != nil {
		return nil, err
	}
	if stats.TotalNotifications, err = s.Notifications.CountNotifications(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteUser deletes a non-admin account
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return err
	}
	return s.deleteUser(ctx, actor, targetID)
}

// DeletePost deletes any post
func (s *AdminService) DeletePost(ctx context.Context, actorID, postID primitive.ObjectID) error {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return err
	}
	return s.deletePost(ctx, actor, postID)
}

// Cleanup deletes every post, comment, notification and account, the
// calling admin's included. The audit entry outlives them in its own store.
func (s *AdminService) Cleanup(ctx context.Context, actorID primitive.ObjectID) (*models.CleanupResult, error) {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	var result models.CleanupResult
	plan, err := s.cleanupPlan(ctx, &result)
	if err != nil {
		return nil, err
	}
	if err := s.execute(ctx, plan); err != nil {
		return nil, err
	}
	s.log.Warn("board cleaned up", zap.String("by", actor.ID.Hex()),
		zap.Int64("users", result.UsersDeleted), zap.Int64("posts", result.PostsDeleted))
	s.audit(ctx, actor, models.AuditCleanup, "all", primitive.NilObjectID,
		fmt.Sprintf("users=%d posts=%d comments=%d notifications=%d",
			result.UsersDeleted, result.PostsDeleted, result.CommentsDeleted, result.NotificationsDeleted))
	return &result, nil
}

// SetVerification grants or removes a user's verified badge
func (s *AdminService) SetVerification(ctx context.Context, actorID, targetID primitive.ObjectID, verified bool) (*models.User, error) {
	actor, err := s.admin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetVerificationStatus(ctx, targetID, verified); err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	s.audit(ctx, actor, models.AuditSetVerification, "user", targetID, fmt.Sprintf("verified=%t", verified))
	user, err := s.Users.GetUserByID(ctx, targetID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// AuditLog returns the latest moderation entries
func (s *AdminService) AuditLog(ctx context.Context, actorID primitive.ObjectID) ([]models.AuditEntry, error) {
	if _, err := s.admin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.Audit.List(ctx, auditPageSize)
}
