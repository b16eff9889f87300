package memory

import (
	"context"
	"testing"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, page(items, 0, 0))
	assert.Equal(t, []int{3, 4}, page(items, 2, 2))
	assert.Equal(t, []int{5}, page(items, 4, 10))
	assert.Empty(t, page(items, 9, 1))
}

func TestUserRepository_Unique(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "a@campus.edu", StudentName: "alice"}))
	err := users.CreateUser(ctx, &models.User{Email: "a@campus.edu", StudentName: "other"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
	err = users.CreateUser(ctx, &models.User{Email: "b@campus.edu", StudentName: "alice"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestUserRepository_DeleteAllUsers(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "admin@campus.edu", StudentName: "admin", IsAdmin: true}))
	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "a@campus.edu", StudentName: "alice"}))
	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "b@campus.edu", StudentName: "bob"}))

	n, err := users.DeleteAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	left, err := users.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	// the store stays usable
	require.NoError(t, users.CreateUser(ctx, &models.User{Email: "a@campus.edu", StudentName: "alice"}))
}

func TestPostRepository_CountAndList(t *testing.T) {
	ctx := context.Background()
	posts := NewStore().Posts()
	owner := primitive.NewObjectID()

	var ids []primitive.ObjectID
	for _, status := range []models.PostStatus{models.StatusUnresolved, models.StatusResolved, models.StatusUnresolved} {
		p := &models.Post{UserID: owner, Title: string(status), Status: status}
		require.NoError(t, posts.CreatePost(ctx, p))
		ids = append(ids, p.ID)
	}

	n, err := posts.CountPosts(ctx, repositories.PostFilter{UserID: &owner, Status: models.StatusUnresolved})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = posts.CountPosts(ctx, repositories.PostFilter{UserID: &owner, ExcludeID: &ids[0]})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := posts.GetAllPosts(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	_, err = posts.GetPostByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
