package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CommentService manages comments and the notifications they raise
type CommentService struct {
	*base
}

// ListComments returns the comments on a post with each commenter's verification badge
func (s *CommentService) ListComments(ctx context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	comments, err := s.Comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	verified := make(map[primitive.ObjectID]bool, len(users))
	for _, u := range users {
		verified[u.ID] = u.VerificationStatus
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{Comment: c, VerificationStatus: verified[c.UserID]})
	}
	return views, nil
}

// AddComment adds a comment to a post. Commenting on someone else's post
// notifies its owner.
func (s *CommentService) AddComment(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("Comment text is required")
	}
	_, user, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, locks.PostKey(postID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	post, err := s.Posts.GetPostByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Post not found")
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:         post.ID,
		UserID:         user.ID,
		StudentName:    user.StudentName,
		UserProfilePic: models.ProfilePicSnapshot{URL: user.ProfilePic.URL},
		Text:           text,
	}
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := s.syncCommentCount(ctx, post.ID, nil); err != nil {
			return err
		}
		if post.UserID == user.ID {
			return nil
		}
		notification := &models.Notification{
			UserID:    post.UserID,
			ActorID:   user.ID,
			ActorName: user.StudentName,
			PostID:    post.ID,
			CommentID: comment.ID,
			Message:   fmt.Sprintf("%s commented on your post: %s", user.StudentName, post.Title),
		}
		if err := s.Notifications.CreateNotification(ctx, notification); err != nil {
			return err
		}
		return s.syncNotificationCount(ctx, post.UserID)
	})
	if err != nil {
		s.log.Error("failed to add comment", zap.String("postId", postID.Hex()), zap.Error(err))
		return nil, err
	}
	return comment, nil
}

// DeleteComment deletes a comment and the notification it raised. The
// author or an admin may delete. The post is taken from the comment.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, commentID primitive.ObjectID) error {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	comment, err := s.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return notFound("Comment not found")
		}
		return err
	}

	unlock, err := s.lock(ctx, locks.PostKey(comment.PostID))
	if err != nil {
		return err
	}
	defer unlock()

	// reload under the lock so a concurrent delete is seen
	comment, err = s.Comments.GetCommentByID(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return notFound("Comment not found")
		}
		return err
	}
	if err := access.CanDeleteComment(actor, comment); err != nil {
		return err
	}

	plan, err := s.commentDeletionPlan(ctx, comment)
	if err != nil {
		return err
	}
	return s.execute(ctx, plan)
}
