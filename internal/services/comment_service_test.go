package services

import (
	"testing"

	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddComment_CountersAndNotification(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 0)

	c := h.comment(t, bob, post, "I saw it at the cafe")
	assert.Equal(t, "bob", c.StudentName)
	assert.EqualValues(t, 1, h.getPost(t, post.ID).CommentCount)
	assert.EqualValues(t, 1, h.user(t, alice.ID).NotificationCount)

	inbox := h.inbox(t, alice.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, bob.ID, inbox[0].ActorID)
	assert.Equal(t, c.ID, inbox[0].CommentID)
	assert.Equal(t, "bob commented on your post: Lost wallet", inbox[0].Message)

	// commenting on your own post does not notify
	h.comment(t, alice, post, "thanks")
	assert.EqualValues(t, 2, h.getPost(t, post.ID).CommentCount)
	assert.EqualValues(t, 1, h.user(t, alice.ID).NotificationCount)
	assert.Len(t, h.inbox(t, alice.ID), 1)
}

func TestAddComment_Errors(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost wallet", 0)

	_, err := h.svc.Comments.AddComment(h.ctx, alice.ID, post.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = h.svc.Comments.AddComment(h.ctx, alice.ID, primitive.NewObjectID(), "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.svc.Comments.AddComment(h.ctx, primitive.NewObjectID(), post.ID, "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.EqualValues(t, 0, h.getPost(t, post.ID).CommentCount)
}

func TestDeleteComment(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	carol := h.register(t, "carol")
	admin := h.register(t, "admin")
	post := h.post(t, alice, "Lost wallet", 0)

	byBob := h.comment(t, bob, post, "found it")
	byCarol := h.comment(t, carol, post, "me too")
	assert.EqualValues(t, 2, h.user(t, alice.ID).NotificationCount)

	err := h.svc.Comments.DeleteComment(h.ctx, carol.ID, byBob.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = h.svc.Comments.DeleteComment(h.ctx, alice.ID, byBob.ID)
	assert.ErrorIs(t, err, ErrForbidden, "post owners cannot delete other people's comments")

	require.NoError(t, h.svc.Comments.DeleteComment(h.ctx, bob.ID, byBob.ID))
	assert.EqualValues(t, 1, h.getPost(t, post.ID).CommentCount)
	assert.EqualValues(t, 1, h.user(t, alice.ID).NotificationCount)
	inbox := h.inbox(t, alice.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, byCarol.ID, inbox[0].CommentID)

	err = h.svc.Comments.DeleteComment(h.ctx, bob.ID, byBob.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.svc.Comments.DeleteComment(h.ctx, admin.ID, byCarol.ID))
	assert.EqualValues(t, 0, h.getPost(t, post.ID).CommentCount)
	assert.EqualValues(t, 0, h.user(t, alice.ID).NotificationCount)
	assert.EqualValues(t, 0, h.countComments(t, repositories.CommentFilter{PostID: &post.ID}))
}

func TestDeleteComment_ViewedNotification(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 0)
	c := h.comment(t, bob, post, "found it")

	require.NoError(t, h.svc.Notifications.MarkAllViewed(h.ctx, alice.ID, alice.ID))
	require.NoError(t, h.svc.Comments.DeleteComment(h.ctx, bob.ID, c.ID))
	assert.EqualValues(t, 0, h.user(t, alice.ID).NotificationCount)
	assert.Empty(t, h.inbox(t, alice.ID))
}

func TestListComments_Verification(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	admin := h.register(t, "admin")
	post := h.post(t, alice, "Lost wallet", 0)
	h.comment(t, bob, post, "first")
	h.comment(t, alice, post, "second")

	_, err := h.svc.Admin.SetVerification(h.ctx, admin.ID, bob.ID, true)
	require.NoError(t, err)

	views, err := h.svc.Comments.ListComments(h.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "second", views[0].Text)
	assert.False(t, views[0].VerificationStatus)
	assert.Equal(t, "first", views[1].Text)
	assert.True(t, views[1].VerificationStatus)
}
