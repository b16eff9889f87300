package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService serves a user's notification inbox
type NotificationService struct {
	*base
}

// ListNotifications returns the inbox of userID, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, actorID, userID primitive.ObjectID) ([]models.NotificationView, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := access.CanViewNotifications(actor, userID); err != nil {
		return nil, err
	}

	notifications, err := s.Notifications.GetNotificationsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	postIDs := make([]primitive.ObjectID, 0, len(notifications))
	commentIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		postIDs = append(postIDs, n.PostID)
		commentIDs = append(commentIDs, n.CommentID)
	}
	posts, err := s.Posts.GetPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments.GetCommentsByIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string, len(posts))
	for _, p := range posts {
		titles[p.ID] = p.Title
	}
	texts := make(map[primitive.ObjectID]string, len(comments))
	for _, c := range comments {
		texts[c.ID] = c.Text
	}

	views := make([]models.NotificationView, 0, len(notifications))
	for _, n := range notifications {
		view := models.NotificationView{
			ID:        n.ID,
			User:      n.ActorName,
			PostID:    n.PostID,
			Post:      titles[n.PostID],
			Comment:   texts[n.CommentID],
			Message:   n.Message,
			Viewed:    n.Viewed,
			CreatedAt: n.CreatedAt,
		}
		if view.Post != "" && view.Comment != "" {
			view.Message = fmt.Sprintf("%s commented: %q on your post: %s", n.ActorName, view.Comment, view.Post)
		}
		views = append(views, view)
	}
	return views, nil
}

// MarkAllViewed clears the inbox of userID
func (s *NotificationService) MarkAllViewed(ctx context.Context, actorID, userID primitive.ObjectID) error {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	if err := access.CanViewNotifications(actor, userID); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, locks.UserKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.Notifications.MarkAllViewed(ctx, userID); err != nil {
		return err
	}
	if err := s.Users.MarkNotificationsSeen(ctx, userID, time.Now()); err != nil {
		if isNotFound(err) {
			return notFound("User not found")
		}
		return err
	}
	return nil
}

// MarkViewed marks one notification viewed. Only its recipient may.
func (s *NotificationService) MarkViewed(ctx context.Context, actorID, notificationID primitive.ObjectID) error {
	actor, n, err := s.owned(ctx, actorID, notificationID)
	if err != nil {
		return err
	}
	if err := s.Notifications.MarkViewed(ctx, n.ID); err != nil {
		if isNotFound(err) {
			return notFound("Notification not found")
		}
		return err
	}
	return s.syncNotificationCount(ctx, actor.ID)
}

// DeleteNotification deletes one notification. Only its recipient may.
func (s *NotificationService) DeleteNotification(ctx context.Context, actorID, notificationID primitive.ObjectID) error {
	actor, n, err := s.owned(ctx, actorID, notificationID)
	if err != nil {
		return err
	}
	if err := s.Notifications.DeleteNotification(ctx, n.ID); err != nil {
		if isNotFound(err) {
			return notFound("Notification not found")
		}
		return err
	}
	if n.Viewed {
		return nil
	}
	return s.syncNotificationCount(ctx, actor.ID)
}

func (s *NotificationService) owned(ctx context.Context, actorID, notificationID primitive.ObjectID) (access.Actor, *models.Notification, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return access.Actor{}, nil, err
	}
	n, err := s.Notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		if isNotFound(err) {
			return access.Actor{}, nil, notFound("Notification not found")
		}
		return access.Actor{}, nil, err
	}
	if err := access.CanManageNotification(actor, n); err != nil {
		return access.Actor{}, nil, err
	}
	return actor, n, nil
}
