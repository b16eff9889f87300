package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flakyNotifications fails DeleteNotifications while failures > 0
type flakyNotifications struct {
	repositories.NotificationRepository
	failures int
}

func (f *flakyNotifications) DeleteNotifications(ctx context.Context, filter repositories.NotificationFilter) (int64, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("write concern timeout")
	}
	return f.NotificationRepository.DeleteNotifications(ctx, filter)
}

// flakyBlobs fails Delete while failures > 0
type flakyBlobs struct {
	storage.BlobStore
	failures int
}

func (f *flakyBlobs) Delete(ctx context.Context, publicID string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("bucket unavailable")
	}
	return f.BlobStore.Delete(ctx, publicID)
}

// inlineTx reports itself transactional and runs fn directly
type inlineTx struct{ runs int }

func (tx *inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.runs++
	return fn(ctx)
}

func (tx *inlineTx) Transactional() bool { return true }

// journal records lock and commit events in order
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(event string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

func (j *journal) index(event string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Index(j.events, event)
}

func (j *journal) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = nil
}

type journalLocker struct {
	locks.Locker
	j *journal
}

func (l journalLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := l.Locker.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	l.j.add("lock " + key)
	return func() {
		l.j.add("unlock " + key)
		unlock()
	}, nil
}

type journalTx struct{ j *journal }

func (tx journalTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	tx.j.add("commit")
	return nil
}

func (journalTx) Transactional() bool { return true }

func TestDeletePost_Cascade(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	carol := h.register(t, "carol")
	post := h.post(t, alice, "Lost wallet", 2)
	other := h.post(t, alice, "Lost keys", 0)
	h.comment(t, bob, post, "one")
	h.comment(t, carol, post, "two")
	h.comment(t, bob, other, "three")
	require.EqualValues(t, 3, h.user(t, alice.ID).NotificationCount)

	err := h.svc.Posts.DeletePost(h.ctx, bob.ID, post.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID))

	_, err = h.store.Posts().GetPostByID(h.ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.EqualValues(t, 0, h.countComments(t, repositories.CommentFilter{PostID: &post.ID}))
	assert.EqualValues(t, 1, h.countComments(t, repositories.CommentFilter{PostID: &other.ID}))
	assert.Len(t, h.inbox(t, alice.ID), 1)
	assert.EqualValues(t, 1, h.user(t, alice.ID).NotificationCount)
	h.requireCounters(t, alice.ID, 1, 0, 1)
	for _, img := range post.Images {
		assert.False(t, h.blobs.Has(img.PublicID))
	}

	entries, err := h.audit.List(h.ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "owners deleting their own posts are not audited")

	err = h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePost_AdminIsAudited(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	admin := h.register(t, "admin")
	post := h.post(t, alice, "Lost wallet", 0)

	require.NoError(t, h.svc.Admin.DeletePost(h.ctx, admin.ID, post.ID))
	h.requireCounters(t, alice.ID, 0, 0, 0)

	entries, err := h.audit.List(h.ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditDeletePost, entries[0].Action)
	assert.Equal(t, admin.ID.Hex(), entries[0].ActorID)
	assert.Equal(t, post.ID.Hex(), entries[0].TargetID)
}

func TestDeleteUser_Cascade(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice", image("me.png"))
	bob := h.register(t, "bob")
	carol := h.register(t, "carol")

	alicePost := h.post(t, alice, "Lost wallet", 1)
	bobPost := h.post(t, bob, "Found umbrella", 0)
	h.comment(t, bob, alicePost, "bob on alice")
	h.comment(t, alice, bobPost, "alice on bob")
	h.comment(t, carol, bobPost, "carol on bob")
	require.EqualValues(t, 2, h.user(t, bob.ID).NotificationCount)
	require.EqualValues(t, 2, h.getPost(t, bobPost.ID).CommentCount)
	require.Equal(t, 2, h.blobs.Len())

	require.NoError(t, h.svc.Users.DeleteUser(h.ctx, alice.ID, alice.ID))

	_, err := h.store.Users().GetUserByID(h.ctx, alice.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = h.store.Posts().GetPostByID(h.ctx, alicePost.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.EqualValues(t, 0, h.countComments(t, repositories.CommentFilter{UserID: &alice.ID}))
	assert.EqualValues(t, 0, h.countComments(t, repositories.CommentFilter{PostID: &alicePost.ID}))
	assert.Empty(t, h.inbox(t, alice.ID))
	assert.Equal(t, 0, h.blobs.Len(), "profile picture and post images are released")

	assert.EqualValues(t, 1, h.getPost(t, bobPost.ID).CommentCount)
	bobNow := h.user(t, bob.ID)
	assert.EqualValues(t, 1, bobNow.NotificationCount)
	inbox := h.inbox(t, bob.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, carol.ID, inbox[0].ActorID)

	entries, err := h.audit.List(h.ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditDeleteUser, entries[0].Action)

	// the deleted account's token no longer works
	_, err = h.svc.Posts.CreatePost(h.ctx, alice.ID, models.CreatePostRequest{}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteUser_Rules(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	admin := h.register(t, "admin")
	require.True(t, admin.IsAdmin)

	err := h.svc.Users.DeleteUser(h.ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = h.svc.Users.DeleteUser(h.ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = h.svc.Admin.DeleteUser(h.ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden, "admin routes need an admin")

	require.NoError(t, h.svc.Admin.DeleteUser(h.ctx, admin.ID, alice.ID))
	err = h.svc.Admin.DeleteUser(h.ctx, admin.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCascade_ResumesAfterFailure(t *testing.T) {
	var flaky *flakyNotifications
	h := newHarness(t, func(d *Dependencies) {
		flaky = &flakyNotifications{NotificationRepository: d.Notifications, failures: 1}
		d.Notifications = flaky
	})
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 1)
	h.comment(t, bob, post, "found it")

	err := h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete notifications")

	// the root is still there so the delete can be retried
	h.getPost(t, post.ID)
	assert.EqualValues(t, 0, h.countComments(t, repositories.CommentFilter{PostID: &post.ID}))

	require.NoError(t, h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID))
	_, err = h.store.Posts().GetPostByID(h.ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.EqualValues(t, 0, h.user(t, alice.ID).NotificationCount)
	h.requireCounters(t, alice.ID, 0, 0, 0)
	assert.Empty(t, h.inbox(t, alice.ID))
}

func TestCascade_BlobFailureStopsPlan(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.Blobs = &flakyBlobs{BlobStore: d.Blobs, failures: 1}
	})
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost wallet", 1)

	err := h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID)
	require.Error(t, err)
	h.getPost(t, post.ID)
	h.requireCounters(t, alice.ID, 1, 0, 1)

	require.NoError(t, h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID))
	h.requireCounters(t, alice.ID, 0, 0, 0)
	assert.Equal(t, 0, h.blobs.Len())
}

func TestCascade_TransactionalReleasesBlobsAfterCommit(t *testing.T) {
	tx := &inlineTx{}
	h := newHarness(t, func(d *Dependencies) {
		d.Blobs = &flakyBlobs{BlobStore: d.Blobs, failures: 1}
		d.Tx = tx
	})
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost wallet", 1)

	require.NoError(t, h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID), "a blob left behind does not fail a committed delete")
	assert.Equal(t, 1, tx.runs)
	_, err := h.store.Posts().GetPostByID(h.ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.True(t, h.blobs.Has(post.Images[0].PublicID))
}

func TestPlanOrder(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost wallet", 1)

	names := h.svc.Posts.postDeletionPlan(post).names()
	require.NotEmpty(t, names)
	assert.Equal(t, "release blob "+post.Images[0].PublicID, names[0])
	assert.Equal(t, "delete post", names[len(names)-1])
}

func TestCascade_TransactionHoldsCounterLocksUntilCommit(t *testing.T) {
	j := &journal{}
	h := newHarness(t, func(d *Dependencies) {
		d.Locker = journalLocker{Locker: locks.NewMemoryLocker(), j: j}
		d.Tx = journalTx{j: j}
	})
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	post := h.post(t, alice, "Lost wallet", 0)
	aliceKey := locks.UserKey(alice.ID)

	j.reset()
	comment := h.comment(t, bob, post, "found it")
	require.NotEqual(t, -1, j.index("commit"))
	assert.Greater(t, j.index("unlock "+aliceKey), j.index("commit"), "add comment")
	assert.EqualValues(t, 1, h.user(t, alice.ID).NotificationCount)

	j.reset()
	require.NoError(t, h.svc.Comments.DeleteComment(h.ctx, bob.ID, comment.ID))
	require.NotEqual(t, -1, j.index("commit"))
	assert.Greater(t, j.index("unlock "+aliceKey), j.index("commit"), "delete comment")
	assert.EqualValues(t, 0, h.user(t, alice.ID).NotificationCount)
	assert.EqualValues(t, 0, h.getPost(t, post.ID).CommentCount)

	// post counters and notification count share the owner's key
	j.reset()
	require.NoError(t, h.svc.Posts.DeletePost(h.ctx, alice.ID, post.ID))
	assert.Greater(t, j.index("unlock "+aliceKey), j.index("commit"), "delete post")
	h.requireCounters(t, alice.ID, 0, 0, 0)
}

func TestSortIDs(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	assert.Equal(t, []primitive.ObjectID{a, b, c}, sortIDs([]primitive.ObjectID{c, a, b}))
}
