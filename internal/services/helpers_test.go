package services

import (
	"context"
	"testing"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/repositories/memory"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const adminEmail = "admin@campus.edu"

type harness struct {
	ctx   context.Context
	svc   *Services
	store *memory.Store
	blobs *storage.MemoryStore
	audit *memory.AuditRepository
}

func newHarness(t *testing.T, opts ...func(*Dependencies)) *harness {
	t.Helper()
	h := &harness{
		ctx:   context.Background(),
		store: memory.NewStore(),
		blobs: storage.NewMemoryStore("http://blobs"),
		audit: &memory.AuditRepository{},
	}
	deps := Dependencies{
		Users:         h.store.Users(),
		Posts:         h.store.Posts(),
		Comments:      h.store.Comments(),
		Notifications: h.store.Notifications(),
		Audit:         h.audit,
		Blobs:         h.blobs,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.svc = New(deps, Options{JWTSecret: []byte("test-secret"), AdminEmails: []string{adminEmail}})
	return h
}

func image(name string) storage.File {
	return storage.File{Name: name, ContentType: "image/png", Extension: ".png", Data: []byte("png")}
}

func images(n int) []storage.File {
	files := make([]storage.File, n)
	for i := range files {
		files[i] = image("img.png")
	}
	return files
}

// register creates a user named name with email name@campus.edu. "admin" gets admin rights.
func (h *harness) register(t *testing.T, name string, pic ...storage.File) *models.User {
	t.Helper()
	var p *storage.File
	if len(pic) > 0 {
		p = &pic[0]
	}
	resp, err := h.svc.Auth.Register(h.ctx, models.RegisterRequest{
		Email:       name + "@campus.edu",
		StudentName: name,
		Password:    "secret1",
	}, p)
	require.NoError(t, err)
	return resp.User
}

func (h *harness) post(t *testing.T, owner *models.User, title string, imageCount int) *models.Post {
	t.Helper()
	p, err := h.svc.Posts.CreatePost(h.ctx, owner.ID, models.CreatePostRequest{
		Title:       title,
		Description: "left near the library",
		Category:    "Electronics",
		CollegeYear: "2",
		Department:  "CSE",
		ItemType:    "lost",
		Tags:        "phone, black",
	}, images(imageCount))
	require.NoError(t, err)
	return p
}

func (h *harness) comment(t *testing.T, author *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	c, err := h.svc.Comments.AddComment(h.ctx, author.ID, post.ID, text)
	require.NoError(t, err)
	return c
}

func (h *harness) user(t *testing.T, id primitive.ObjectID) *models.User {
	t.Helper()
	u, err := h.store.Users().GetUserByID(h.ctx, id)
	require.NoError(t, err)
	return u
}

func (h *harness) getPost(t *testing.T, id primitive.ObjectID) *models.Post {
	t.Helper()
	p, err := h.store.Posts().GetPostByID(h.ctx, id)
	require.NoError(t, err)
	return p
}

func (h *harness) inbox(t *testing.T, userID primitive.ObjectID) []models.Notification {
	t.Helper()
	n, err := h.store.Notifications().GetNotificationsByUserID(h.ctx, userID)
	require.NoError(t, err)
	return n
}

func (h *harness) countComments(t *testing.T, filter repositories.CommentFilter) int64 {
	t.Helper()
	n, err := h.store.Comments().CountComments(h.ctx, filter)
	require.NoError(t, err)
	return n
}

// requireCounters checks a user's post counters against a live count
func (h *harness) requireCounters(t *testing.T, id primitive.ObjectID, posts, resolved, unresolved int64) {
	t.Helper()
	u := h.user(t, id)
	require.Equal(t, posts, u.PostCount, "postCount")
	require.Equal(t, resolved, u.ResolvedCount, "resolvedCount")
	require.Equal(t, unresolved, u.UnresolvedCount, "unresolvedCount")
}
