package memory

import (
	"context"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository implements repositories.PostRepository in memory
type PostRepository struct {
	s *Store
}

var _ repositories.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) CreatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Images == nil {
		post.Images = []models.Image{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *PostRepository) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r *PostRepository) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	set := idSet(ids)
	return r.find(func(p models.Post) bool {
		_, ok := set[p.ID]
		return ok
	}, 0, 0), nil
}

func (r *PostRepository) GetPostsByUserID(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	return r.find(func(p models.Post) bool { return p.UserID == userID }, skip, limit), nil
}

func (r *PostRepository) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(func(models.Post) bool { return true }, skip, limit), nil
}

func (r *PostRepository) find(match func(models.Post) bool, skip, limit int64) []models.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := []models.Post{}
	for _, p := range r.s.posts {
		if match(p) {
			posts = append(posts, clonePost(p))
		}
	}
	sortPosts(posts)
	return page(posts, skip, limit)
}

func (r *PostRepository) UpdatePost(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.UpdatedAt = time.Now()
	p.Title = post.Title
	p.Description = post.Description
	p.Category = post.Category
	p.CollegeYear = post.CollegeYear
	p.Department = post.Department
	p.ItemType = post.ItemType
	p.Images = post.Images
	p.Status = post.Status
	p.Tags = post.Tags
	p.UpdatedAt = post.UpdatedAt
	r.s.posts[post.ID] = clonePost(p)
	return nil
}

func (r *PostRepository) UpdateAuthor(_ context.Context, userID primitive.ObjectID, name, picURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, p := range r.s.posts {
		if p.UserID == userID {
			p.StudentName = name
			p.UserProfilePic.URL = picURL
			r.s.posts[id] = p
		}
	}
	return nil
}

func (r *PostRepository) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Views++
	r.s.posts[id] = p
	p = clonePost(p)
	return &p, nil
}

func (r *PostRepository) SetCommentCount(_ context.Context, id primitive.ObjectID, count int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p, ok := r.s.posts[id]; ok {
		p.CommentCount = count
		r.s.posts[id] = p
	}
	return nil
}

func (r *PostRepository) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *PostRepository) DeletePostsByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteWhere(func(p models.Post) bool { return p.UserID == userID }), nil
}

func (r *PostRepository) DeleteAllPosts(_ context.Context) (int64, error) {
	return r.deleteWhere(func(models.Post) bool { return true }), nil
}

func (r *PostRepository) deleteWhere(match func(models.Post) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.posts {
		if match(p) {
			delete(r.s.posts, id)
			n++
		}
	}
	return n
}

func (r *PostRepository) CountPosts(_ context.Context, filter repositories.PostFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.posts {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ExcludeID != nil && p.ID == *filter.ExcludeID {
			continue
		}
		n++
	}
	return n, nil
}
