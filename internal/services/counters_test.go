package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hammerComments has every commenter add comments on post concurrently and
// delete every other one, while the owner keeps clearing the inbox.
func hammerComments(t *testing.T, h *harness, owner *models.User, post *models.Post, commenters []*models.User, rounds int) {
	t.Helper()
	errs := make(chan error, len(commenters)*rounds*2+rounds)
	var wg sync.WaitGroup
	for _, u := range commenters {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				c, err := h.svc.Comments.AddComment(h.ctx, u.ID, post.ID, fmt.Sprintf("%s #%d", u.StudentName, i))
				if err != nil {
					errs <- err
					continue
				}
				if i%2 == 1 {
					if err := h.svc.Comments.DeleteComment(h.ctx, u.ID, c.ID); err != nil {
						errs <- err
					}
				}
			}
		}(u)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := h.svc.Notifications.MarkAllViewed(h.ctx, owner.ID, owner.ID); err != nil {
				errs <- err
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func (h *harness) requireLiveCounts(t *testing.T, owner *models.User, post *models.Post) {
	t.Helper()
	comments := h.countComments(t, repositories.CommentFilter{PostID: &post.ID})
	assert.Equal(t, comments, h.getPost(t, post.ID).CommentCount, "commentCount")

	unviewed, err := h.store.Notifications().CountUnviewed(h.ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, unviewed, h.user(t, owner.ID).NotificationCount, "notificationCount")
}

func TestCounters_ConcurrentComments(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost wallet", 0)
	commenters := []*models.User{alice}
	for i := 0; i < 4; i++ {
		commenters = append(commenters, h.register(t, fmt.Sprintf("student%d", i)))
	}

	hammerComments(t, h, alice, post, commenters, 10)

	assert.EqualValues(t, 5*5, h.countComments(t, repositories.CommentFilter{PostID: &post.ID}))
	h.requireLiveCounts(t, alice, post)
}

// lockedTx runs fn under one global lock, enough isolation to stand in for
// a transaction over the memory store
type lockedTx struct{ mu sync.Mutex }

func (tx *lockedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return fn(ctx)
}

func (tx *lockedTx) Transactional() bool { return true }

func TestCounters_ConcurrentCommentsInTransactions(t *testing.T) {
	h := newHarness(t, func(d *Dependencies) {
		d.Tx = &lockedTx{}
		d.Locker = locks.NewMemoryLocker()
	})
	alice := h.register(t, "alice")
	post := h.post(t, alice, "Lost phone", 0)
	var commenters []*models.User
	for i := 0; i < 4; i++ {
		commenters = append(commenters, h.register(t, fmt.Sprintf("student%d", i)))
	}

	hammerComments(t, h, alice, post, commenters, 8)

	assert.EqualValues(t, 4*4, h.countComments(t, repositories.CommentFilter{PostID: &post.ID}))
	h.requireLiveCounts(t, alice, post)
}
