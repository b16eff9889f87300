package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anonto42/campustrack/backend/internal/access"
	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PostService manages lost and found posts
type PostService struct {
	*base
}

// CreatePost stores a new post with up to MaxPostImages images
func (s *PostService) CreatePost(ctx context.Context, actorID primitive.ObjectID, req models.CreatePostRequest, files []storage.File) (*models.Post, error) {
	_, user, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	itemType := models.ItemType(strings.ToUpper(strings.TrimSpace(req.ItemType)))
	if !itemType.Valid() {
		return nil, invalid("itemType must be LOST or FOUND")
	}
	post := &models.Post{
		UserID:         user.ID,
		StudentName:    user.StudentName,
		UserProfilePic: models.ProfilePicSnapshot{URL: user.ProfilePic.URL},
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Category:       strings.TrimSpace(req.Category),
		CollegeYear:    strings.TrimSpace(req.CollegeYear),
		Department:     strings.TrimSpace(req.Department),
		ItemType:       itemType,
		Status:         models.StatusUnresolved,
		Tags:           ParseTags(req.Tags),
	}
	if post.Title == "" || post.Description == "" || post.Category == "" || post.CollegeYear == "" || post.Department == "" {
		return nil, invalid("Missing required fields")
	}
	if len(files) > models.MaxPostImages {
		return nil, invalid("A post can have at most %d images", models.MaxPostImages)
	}

	images, err := s.uploadAll(ctx, storage.FolderPosts, files)
	if err != nil {
		return nil, err
	}
	post.Images = images

	if err := s.Posts.CreatePost(ctx, post); err != nil {
		s.releaseBlobs(ctx, images)
		return nil, err
	}
	if err := s.syncPostCounters(ctx, user.ID, nil); err != nil {
		s.log.Error("failed to update post counters", zap.String("userId", user.ID.Hex()), zap.Error(err))
	}
	return post, nil
}

// ListPosts returns posts newest first with their author summaries
func (s *PostService) ListPosts(ctx context.Context, skip, limit int64) ([]models.PostView, error) {
	posts, err := s.Posts.GetAllPosts(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, posts)
}

// ListUserPosts returns one user's posts newest first
func (s *PostService) ListUserPosts(ctx context.Context, userID primitive.ObjectID) ([]models.PostView, error) {
	posts, err := s.Posts.GetPostsByUserID(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, posts)
}

func (s *PostService) withAuthors(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	seen := map[primitive.ObjectID]bool{}
	for _, p := range posts {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors := make(map[primitive.ObjectID]models.UserCompact, len(users))
	for i := range users {
		authors[users[i].ID] = users[i].ToCompact()
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		view := models.PostView{Post: p}
		if a, ok := authors[p.UserID]; ok {
			view.Author = &a
		}
		views = append(views, view)
	}
	return views, nil
}

// ViewPost returns a post and counts the view
func (s *PostService) ViewPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.Posts.IncrementViews(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

// UpdatePost edits a post. Only the owner may edit.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID primitive.ObjectID, req models.UpdatePostRequest, files []storage.File) (*models.Post, error) {
	actor, _, err := s.actor(ctx, actorID)
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
	if err := access.CanEditPost(actor, post); err != nil {
		return nil, err
	}

	setIfPresent(&post.Title, req.Title)
	setIfPresent(&post.Description, req.Description)
	setIfPresent(&post.Category, req.Category)
	setIfPresent(&post.CollegeYear, req.CollegeYear)
	setIfPresent(&post.Department, req.Department)
	if v := strings.TrimSpace(req.ItemType); v != "" {
		itemType := models.ItemType(strings.ToUpper(v))
		if !itemType.Valid() {
			return nil, invalid("itemType must be LOST or FOUND")
		}
		post.ItemType = itemType
	}
	oldStatus := post.Status
	if v := strings.TrimSpace(req.Status); v != "" {
		status := models.PostStatus(strings.ToUpper(v))
		if !status.Valid() {
			status = models.StatusUnresolved
		}
		post.Status = status
	}
	if strings.TrimSpace(req.Tags) != "" {
		post.Tags = ParseTags(req.Tags)
	}

	kept, removed, err := keepImages(post.Images, req.ExistingImages)
	if err != nil {
		return nil, err
	}
	if len(kept)+len(files) > models.MaxPostImages {
		return nil, invalid("A post can have at most %d images", models.MaxPostImages)
	}
	added, err := s.uploadAll(ctx, storage.FolderPosts, files)
	if err != nil {
		return nil, err
	}
	post.Images = append(kept, added...)

	if err := s.Posts.UpdatePost(ctx, post); err != nil {
		s.releaseBlobs(ctx, added)
		if isNotFound(err) {
			return nil, notFound("Post not found")
		}
		return nil, err
	}
	s.releaseBlobs(ctx, removed)

	if post.Status != oldStatus {
		if err := s.syncPostCounters(ctx, post.UserID, nil); err != nil {
			s.log.Error("failed to update post counters", zap.String("userId", post.UserID.Hex()), zap.Error(err))
		}
	}
	return post, nil
}

// DeletePost deletes a post with its comments, notifications and images.
// The owner or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, actorID, postID primitive.ObjectID) error {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	return s.deletePost(ctx, actor, postID)
}

func (b *base) deletePost(ctx context.Context, actor access.Actor, postID primitive.ObjectID) error {
	unlock, err := b.lock(ctx, locks.PostKey(postID))
	if err != nil {
		return err
	}
	defer unlock()

	post, err := b.Posts.GetPostByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return notFound("Post not found")
		}
		return err
	}
	if err := access.CanDeletePost(actor, post); err != nil {
		return err
	}
	if err := b.execute(ctx, b.postDeletionPlan(post)); err != nil {
		return err
	}
	if post.UserID != actor.ID {
		b.audit(ctx, actor, models.AuditDeletePost, "post", post.ID, post.Title)
	}
	return nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// ParseTags accepts a JSON array or a comma separated list. Tags are
// trimmed and deduplicated in order.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	tags := []string{}
	if raw == "" {
		return tags
	}
	var parts []string
	if err := json.Unmarshal([]byte(raw), &parts); err != nil {
		parts = strings.Split(raw, ",")
	}
	seen := map[string]bool{}
	for _, t := range parts {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

// keepImages splits current into the images listed in existingJSON and
// the rest. An empty existingJSON keeps everything.
func keepImages(current []models.Image, existingJSON string) (kept, removed []models.Image, err error) {
	if strings.TrimSpace(existingJSON) == "" {
		return append([]models.Image{}, current...), nil, nil
	}
	var wanted []models.Image
	if err := json.Unmarshal([]byte(existingJSON), &wanted); err != nil {
		return nil, nil, invalid("existingImages must be a JSON array of images")
	}
	keep := map[string]bool{}
	for _, img := range wanted {
		keep[img.PublicID] = true
	}
	kept = []models.Image{}
	for _, img := range current {
		if keep[img.PublicID] {
			kept = append(kept, img)
		} else {
			removed = append(removed, img)
		}
	}
	return kept, removed, nil
}
