package services

import (
	"context"
	"fmt"

	"github.com/anonto42/campustrack/backend/internal/metrics"
	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stepKind int

const (
	stepDocument stepKind = iota
	stepBlob
)

type cascadeStep struct {
	name string
	kind stepKind
	run  func(ctx context.Context) error
}

// cascadePlan is the ordered list of steps that deletes a root and
// everything that depends on it. Dependents come first and the root last,
// and every step can be repeated, so a plan that stopped half way can be
// run again from the start.
type cascadePlan struct {
	root  string
	id    string
	steps []cascadeStep
}

func newCascadePlan(root string, id primitive.ObjectID) *cascadePlan {
	p := &cascadePlan{root: root}
	if !id.IsZero() {
		p.id = id.Hex()
	}
	return p
}

func (p *cascadePlan) doc(name string, run func(ctx context.Context) error) {
	p.steps = append(p.steps, cascadeStep{name: name, kind: stepDocument, run: run})
}

func (p *cascadePlan) blob(b *base, img models.Image) {
	if img.PublicID == "" {
		return
	}
	publicID := img.PublicID
	p.steps = append(p.steps, cascadeStep{
		name: "release blob " + publicID,
		kind: stepBlob,
		run:  func(ctx context.Context) error { return b.Blobs.Delete(ctx, publicID) },
	})
}

func (p *cascadePlan) names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.name
	}
	return names
}

// execute runs the plan. With transactions the document steps commit
// together and blobs are released afterwards; a blob that fails to release
// then is logged and left behind. Without transactions the steps run in
// order and the first failure stops the plan.
func (b *base) execute(ctx context.Context, plan *cascadePlan) error {
	err := b.runPlan(ctx, plan)
	metrics.CascadeRuns.WithLabelValues(plan.root, metrics.Outcome(err)).Inc()
	return err
}

func (b *base) runPlan(ctx context.Context, plan *cascadePlan) error {
	if !b.Tx.Transactional() {
		for _, step := range plan.steps {
			if err := b.runStep(ctx, plan, step); err != nil {
				return err
			}
		}
		return nil
	}

	err := b.runInTx(ctx, func(ctx context.Context) error {
		for _, step := range plan.steps {
			if step.kind != stepDocument {
				continue
			}
			if err := b.runStep(ctx, plan, step); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, step := range plan.steps {
		if step.kind == stepBlob {
			_ = b.runStep(ctx, plan, step)
		}
	}
	return nil
}

func (b *base) runStep(ctx context.Context, plan *cascadePlan, step cascadeStep) error {
	if err := step.run(ctx); err != nil {
		b.log.Error("cascade step failed",
			zap.String("root", plan.root), zap.String("id", plan.id),
			zap.String("step", step.name), zap.Error(err))
		return fmt.Errorf("delete %s %s: %s: %w", plan.root, plan.id, step.name, err)
	}
	b.log.Debug("cascade step done",
		zap.String("root", plan.root), zap.String("id", plan.id), zap.String("step", step.name))
	return nil
}

// postDeletionPlan removes a post with its images, comments and the
// notifications about it. The caller holds the post lock.
func (b *base) postDeletionPlan(post *models.Post) *cascadePlan {
	postID := post.ID
	owner := post.UserID
	plan := newCascadePlan("post", postID)

	for _, img := range post.Images {
		plan.blob(b, img)
	}
	plan.doc("delete comments", func(ctx context.Context) error {
		_, err := b.Comments.DeleteCommentsByPostID(ctx, postID)
		return err
	})
	plan.doc("delete notifications", func(ctx context.Context) error {
		_, err := b.Notifications.DeleteNotifications(ctx, repositories.NotificationFilter{PostID: &postID})
		return err
	})
	plan.doc("sync owner post counters", func(ctx context.Context) error {
		return b.syncPostCounters(ctx, owner, &postID)
	})
	plan.doc("sync owner notification count", func(ctx context.Context) error {
		return b.syncNotificationCount(ctx, owner)
	})
	plan.doc("delete post", func(ctx context.Context) error {
		return b.Posts.DeletePost(ctx, postID)
	})
	return plan
}

// commentDeletionPlan removes a comment and the notification it raised.
// The caller holds the lock of the comment's post.
func (b *base) commentDeletionPlan(ctx context.Context, comment *models.Comment) (*cascadePlan, error) {
	commentID := comment.ID
	postID := comment.PostID
	filter := repositories.NotificationFilter{CommentIDs: []primitive.ObjectID{commentID}}
	targets, err := b.Notifications.NotificationTargets(ctx, filter)
	if err != nil {
		return nil, err
	}

	plan := newCascadePlan("comment", commentID)
	plan.doc("delete notifications", func(ctx context.Context) error {
		_, err := b.Notifications.DeleteNotifications(ctx, filter)
		return err
	})
	for _, target := range sortIDs(targets) {
		plan.doc("sync notification count of "+target.Hex(), func(ctx context.Context) error {
			return b.syncNotificationCount(ctx, target)
		})
	}
	plan.doc("sync post comment count", func(ctx context.Context) error {
		return b.syncCommentCount(ctx, postID, &commentID)
	})
	plan.doc("delete comment", func(ctx context.Context) error {
		return b.Comments.DeleteComment(ctx, commentID)
	})
	return plan, nil
}

// userDeletionPlan removes an account with its profile picture, its posts
// and their dependents, its comments on other posts and every notification
// addressed to it.
func (b *base) userDeletionPlan(ctx context.Context, user *models.User) (*cascadePlan, error) {
	userID := user.ID
	plan := newCascadePlan("user", userID)
	plan.blob(b, user.ProfilePic)

	owned, err := b.Posts.GetPostsByUserID(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}
	ownedIDs := make(map[primitive.ObjectID]bool, len(owned))
	for i := range owned {
		post := owned[i]
		ownedIDs[post.ID] = true
		for _, img := range post.Images {
			plan.blob(b, img)
		}
		plan.doc("delete comments of post "+post.ID.Hex(), func(ctx context.Context) error {
			_, err := b.Comments.DeleteCommentsByPostID(ctx, post.ID)
			return err
		})
		plan.doc("delete notifications of post "+post.ID.Hex(), func(ctx context.Context) error {
			_, err := b.Notifications.DeleteNotifications(ctx, repositories.NotificationFilter{PostID: &post.ID})
			return err
		})
	}
	plan.doc("delete posts", func(ctx context.Context) error {
		_, err := b.Posts.DeletePostsByUserID(ctx, userID)
		return err
	})

	authored, err := b.Comments.GetCommentsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var foreignComments []primitive.ObjectID
	var touchedPosts []primitive.ObjectID
	seenPosts := map[primitive.ObjectID]bool{}
	for _, c := range authored {
		if ownedIDs[c.PostID] {
			continue
		}
		foreignComments = append(foreignComments, c.ID)
		if !seenPosts[c.PostID] {
			seenPosts[c.PostID] = true
			touchedPosts = append(touchedPosts, c.PostID)
		}
	}

	affected := map[primitive.ObjectID]bool{}
	if len(foreignComments) > 0 {
		filter := repositories.NotificationFilter{CommentIDs: foreignComments}
		targets, err := b.Notifications.NotificationTargets(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			affected[t] = true
		}
		plan.doc("delete notifications of comments", func(ctx context.Context) error {
			_, err := b.Notifications.DeleteNotifications(ctx, filter)
			return err
		})
	}
	plan.doc("delete comments", func(ctx context.Context) error {
		_, err := b.Comments.DeleteCommentsByUserID(ctx, userID)
		return err
	})
	for _, postID := range sortIDs(touchedPosts) {
		plan.doc("sync comment count of post "+postID.Hex(), func(ctx context.Context) error {
			return b.syncCommentCountLocked(ctx, postID)
		})
	}
	plan.doc("delete notifications addressed to user", func(ctx context.Context) error {
		_, err := b.Notifications.DeleteNotifications(ctx, repositories.NotificationFilter{UserID: &userID})
		return err
	})
	delete(affected, userID)
	targets := make([]primitive.ObjectID, 0, len(affected))
	for target := range affected {
		targets = append(targets, target)
	}
	for _, target := range sortIDs(targets) {
		plan.doc("sync notification count of "+target.Hex(), func(ctx context.Context) error {
			return b.syncNotificationCount(ctx, target)
		})
	}
	plan.doc("delete user", func(ctx context.Context) error {
		return b.Users.DeleteUser(ctx, userID)
	})
	return plan, nil
}

// cleanupPlan empties the board, every account included
func (b *base) cleanupPlan(ctx context.Context, result *models.CleanupResult) (*cascadePlan, error) {
	plan := newCascadePlan("all", primitive.NilObjectID)

	posts, err := b.Posts.GetAllPosts(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		for _, img := range post.Images {
			if img.PublicID != "" {
				plan.blob(b, img)
				result.BlobsReleased++
			}
		}
	}
	users, err := b.Users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ProfilePic.PublicID != "" {
			plan.blob(b, u.ProfilePic)
			result.BlobsReleased++
		}
	}

	plan.doc("delete notifications", func(ctx context.Context) error {
		n, err := b.Notifications.DeleteNotifications(ctx, repositories.NotificationFilter{})
		result.NotificationsDeleted = n
		return err
	})
	plan.doc("delete comments", func(ctx context.Context) error {
		n, err := b.Comments.DeleteAllComments(ctx)
		result.CommentsDeleted = n
		return err
	})
	plan.doc("delete posts", func(ctx context.Context) error {
		n, err := b.Posts.DeleteAllPosts(ctx)
		result.PostsDeleted = n
		return err
	})
	plan.doc("delete users", func(ctx context.Context) error {
		n, err := b.Users.DeleteAllUsers(ctx)
		result.UsersDeleted = n
		return err
	})
	return plan, nil
}
