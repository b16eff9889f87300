package memory

import (
	"context"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository implements repositories.CommentRepository in memory
type CommentRepository struct {
	s *Store
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

func (r *CommentRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepository) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *CommentRepository) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	set := idSet(ids)
	return r.find(func(c models.Comment) bool {
		_, ok := set[c.ID]
		return ok
	}), nil
}

func (r *CommentRepository) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (r *CommentRepository) GetCommentsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(func(c models.Comment) bool { return c.UserID == userID }), nil
}

func (r *CommentRepository) find(match func(models.Comment) bool) []models.Comment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comments := []models.Comment{}
	for _, c := range r.s.comments {
		if match(c) {
			comments = append(comments, c)
		}
	}
	sortComments(comments)
	return comments
}

func (r *CommentRepository) UpdateAuthor(_ context.Context, userID primitive.ObjectID, name, picURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, c := range r.s.comments {
		if c.UserID == userID {
			c.StudentName = name
			c.UserProfilePic.URL = picURL
			r.s.comments[id] = c
		}
	}
	return nil
}

func (r *CommentRepository) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *CommentRepository) DeleteCommentsByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(c models.Comment) bool { return c.PostID == postID }), nil
}

func (r *CommentRepository) DeleteCommentsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(c models.Comment) bool { return c.UserID == userID }), nil
}

func (r *CommentRepository) DeleteAllComments(_ context.Context) (int64, error) {
	return r.deleteWhere(func(models.Comment) bool { return true }), nil
}

func (r *CommentRepository) deleteWhere(match func(models.Comment) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if match(c) {
			delete(r.s.comments, id)
			n++
		}
	}
	return n
}

func (r *CommentRepository) CountComments(_ context.Context, filter repositories.CommentFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.comments {
		if filter.PostID != nil && c.PostID != *filter.PostID {
			continue
		}
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.ExcludeID != nil && c.ID == *filter.ExcludeID {
			continue
		}
		n++
	}
	return n, nil
}
