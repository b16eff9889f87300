package services

import (
	"context"
	"testing"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdmin_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")

	_, err := h.svc.Admin.ListUsers(h.ctx, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.Admin.Stats(h.ctx, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.Admin.Cleanup(h.ctx, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.Admin.SetVerification(h.ctx, alice.ID, alice.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.Admin.AuditLog(h.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdmin_ListsAndStats(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	admin := h.register(t, "admin")
	post := h.post(t, alice, "Lost wallet", 0)
	h.post(t, bob, "Found keys", 0)
	h.comment(t, bob, post, "mine?")
	_, err := h.svc.Posts.UpdatePost(h.ctx, alice.ID, post.ID, models.UpdatePostRequest{Status: "RESOLVED"}, nil)
	require.NoError(t, err)

	users, err := h.svc.Admin.ListUsers(h.ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	posts, err := h.svc.Admin.ListPosts(h.ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	stats, err := h.svc.Admin.Stats(h.ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{
		TotalUsers:         3,
		TotalPosts:         2,
		ResolvedPosts:      1,
		UnresolvedPosts:    1,
		TotalComments:      1,
		TotalNotifications: 1,
	}, *stats)
}

func TestAdmin_Cleanup(t *testing.T) {
	h := newHarness(t)
	admin := h.register(t, "admin", image("admin.png"))
	alice := h.register(t, "alice", image("alice.png"))
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 2)
	h.post(t, admin, "Admin post", 1)
	h.comment(t, bob, post, "hi")
	require.Equal(t, 5, h.blobs.Len())

	result, err := h.svc.Admin.Cleanup(h.ctx, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.UsersDeleted)
	assert.EqualValues(t, 2, result.PostsDeleted)
	assert.EqualValues(t, 1, result.CommentsDeleted)
	assert.EqualValues(t, 1, result.NotificationsDeleted)
	assert.Equal(t, 5, result.BlobsReleased)
	assert.Equal(t, 0, h.blobs.Len())

	users, err := h.store.Users().CountUsers(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, users)
	posts, err := h.store.Posts().CountPosts(h.ctx, repositories.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, posts)

	// the calling admin is gone too
	_, err = h.svc.Admin.Stats(h.ctx, admin.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	entries, err := h.audit.List(h.ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditCleanup, entries[0].Action)
	assert.Equal(t, admin.ID.Hex(), entries[0].ActorID)
}

func TestAdmin_SetVerification(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	admin := h.register(t, "admin")

	user, err := h.svc.Admin.SetVerification(h.ctx, admin.ID, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, user.VerificationStatus)

	user, err = h.svc.Admin.SetVerification(h.ctx, admin.ID, alice.ID, false)
	require.NoError(t, err)
	assert.False(t, user.VerificationStatus)

	_, err = h.svc.Admin.SetVerification(h.ctx, admin.ID, primitive.NewObjectID(), true)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := h.svc.Admin.AuditLog(h.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "verified=false", entries[0].Detail)
}

// deletedAfterUpdate drops the user right after the verification write,
// as a concurrent account deletion would.
type deletedAfterUpdate struct {
	repositories.UserRepository
}

func (r deletedAfterUpdate) SetVerificationStatus(ctx context.Context, id primitive.ObjectID, verified bool) error {
	if err := r.UserRepository.SetVerificationStatus(ctx, id, verified); err != nil {
		return err
	}
	return r.UserRepository.DeleteUser(ctx, id)
}

func TestAdmin_SetVerificationTargetDeletedMidway(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.Users = deletedAfterUpdate{UserRepository: d.Users}
	})
	alice := h.register(t, "alice")
	admin := h.register(t, "admin")

	_, err := h.svc.Admin.SetVerification(h.ctx, admin.ID, alice.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "User not found", svcErr.Message)
	assert.NotErrorIs(t, err, repositories.ErrNotFound)
}
