package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Denormalized counters are rewritten from a live count of the documents
// they summarize, under the mutation lock of the document that holds them.
// exclude counts as if that document were already deleted.
//
// Inside a transaction a counter lock is held until the transaction has
// committed, so the next writer counts committed documents. Keys are taken
// posts before users and in sorted order within each, which keeps two
// transactions from waiting on each other.

type txLocksKey struct{}

// txLocks collects the counter locks taken inside one transaction
type txLocks struct {
	mu      sync.Mutex
	held    map[string]bool
	unlocks []func()
}

func (l *txLocks) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.unlocks) - 1; i >= 0; i-- {
		l.unlocks[i]()
	}
	l.unlocks = nil
}

// runInTx runs fn in a transaction and releases the counter locks fn took
// once it has committed or aborted.
func (b *base) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.Tx.Transactional() {
		return b.Tx.RunInTx(ctx, fn)
	}
	held := &txLocks{held: map[string]bool{}}
	defer held.release()
	return b.Tx.RunInTx(context.WithValue(ctx, txLocksKey{}, held), fn)
}

// counterLock takes the lock guarding a counter. Inside runInTx the returned
// unlock does nothing and the lock is released after the transaction.
func (b *base) counterLock(ctx context.Context, key string) (func(), error) {
	held, ok := ctx.Value(txLocksKey{}).(*txLocks)
	if !ok {
		return b.lock(ctx, key)
	}
	held.mu.Lock()
	defer held.mu.Unlock()
	if held.held[key] {
		return func() {}, nil
	}
	unlock, err := b.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	held.held[key] = true
	held.unlocks = append(held.unlocks, unlock)
	return func() {}, nil
}

// sortIDs orders ids the way their lock keys are taken
func sortIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	slices.SortFunc(ids, func(a, b primitive.ObjectID) int { return strings.Compare(a.Hex(), b.Hex()) })
	return ids
}

// syncPostCounters rewrites postCount, resolvedCount and unresolvedCount of a user
func (b *base) syncPostCounters(ctx context.Context, userID primitive.ObjectID, exclude *primitive.ObjectID) error {
	unlock, err := b.counterLock(ctx, locks.UserKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	resolved, err := b.Posts.CountPosts(ctx, repositories.PostFilter{UserID: &userID, Status: models.StatusResolved, ExcludeID: exclude})
	if err != nil {
		return err
	}
	unresolved, err := b.Posts.CountPosts(ctx, repositories.PostFilter{UserID: &userID, Status: models.StatusUnresolved, ExcludeID: exclude})
	if err != nil {
		return err
	}
	return b.Users.SetPostCounters(ctx, userID, resolved+unresolved, resolved, unresolved)
}

// syncNotificationCount rewrites notificationCount of a user
func (b *base) syncNotificationCount(ctx context.Context, userID primitive.ObjectID) error {
	unlock, err := b.counterLock(ctx, locks.UserKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	count, err := b.Notifications.CountUnviewed(ctx, userID)
	if err != nil {
		return err
	}
	return b.Users.SetNotificationCount(ctx, userID, count)
}

// syncCommentCount rewrites commentCount of a post. The caller holds the post lock.
func (b *base) syncCommentCount(ctx context.Context, postID primitive.ObjectID, exclude *primitive.ObjectID) error {
	count, err := b.Comments.CountComments(ctx, repositories.CommentFilter{PostID: &postID, ExcludeID: exclude})
	if err != nil {
		return err
	}
	return b.Posts.SetCommentCount(ctx, postID, count)
}

// syncCommentCountLocked takes the post lock around syncCommentCount
func (b *base) syncCommentCountLocked(ctx context.Context, postID primitive.ObjectID) error {
	unlock, err := b.counterLock(ctx, locks.PostKey(postID))
	if err != nil {
		return err
	}
	defer unlock()
	return b.syncCommentCount(ctx, postID, nil)
}
