package services

import (
	"testing"

	"github.com/anonto42/campustrack/backend/internal/auth"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEditUser_Profile(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice", image("old.png"))
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 0)
	c := h.comment(t, alice, post, "bump")
	oldPic := alice.ProfilePic
	newPic := image("new.png")

	updated, err := h.svc.Users.EditUser(h.ctx, alice.ID, alice.ID, models.UpdateUserRequest{
		StudentName: "alice2",
		Password:    "newsecret",
		Department:  "EEE",
	}, &newPic)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.StudentName)
	assert.Equal(t, "EEE", updated.Department)
	assert.NotEqual(t, oldPic.PublicID, updated.ProfilePic.PublicID)
	assert.False(t, h.blobs.Has(oldPic.PublicID), "old picture is released")
	assert.True(t, h.blobs.Has(updated.ProfilePic.PublicID))
	assert.True(t, auth.CheckPassword(h.user(t, alice.ID).Password, "newsecret"))

	// author snapshots follow the profile
	p := h.getPost(t, post.ID)
	assert.Equal(t, "alice2", p.StudentName)
	assert.Equal(t, updated.ProfilePic.URL, p.UserProfilePic.URL)
	stored, err := h.store.Comments().GetCommentByID(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.StudentName)

	_, err = h.svc.Users.EditUser(h.ctx, alice.ID, alice.ID, models.UpdateUserRequest{StudentName: "bob"}, nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = h.svc.Users.EditUser(h.ctx, alice.ID, alice.ID, models.UpdateUserRequest{Email: "BOB@campus.edu"}, nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = h.svc.Users.EditUser(h.ctx, bob.ID, alice.ID, models.UpdateUserRequest{Department: "ME"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEditUser_ByAdmin(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	admin := h.register(t, "admin")

	updated, err := h.svc.Users.EditUser(h.ctx, admin.ID, alice.ID, models.UpdateUserRequest{CollegeYear: "4"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "4", updated.CollegeYear)

	_, err = h.svc.Users.EditUser(h.ctx, admin.ID, primitive.NewObjectID(), models.UpdateUserRequest{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 0)
	h.post(t, alice, "Lost keys", 0)
	h.post(t, bob, "Found pen", 0)
	h.comment(t, bob, post, "seen it")
	_, err := h.svc.Posts.UpdatePost(h.ctx, alice.ID, post.ID, models.UpdatePostRequest{Status: "resolved"}, nil)
	require.NoError(t, err)

	mine, err := h.svc.Users.Stats(h.ctx, &alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalPosts: 2, ResolvedPosts: 1, UnresolvedPosts: 1}, *mine)

	all, err := h.svc.Users.Stats(h.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalPosts: 3, ResolvedPosts: 1, UnresolvedPosts: 2, TotalComments: 1}, *all)
}

func TestGetUser(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")

	u, err := h.svc.Users.GetUser(h.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, u.Email)

	_, err = h.svc.Users.GetUser(h.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
