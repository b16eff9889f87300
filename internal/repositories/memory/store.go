// Package memory holds process-local repository implementations backed by
// maps. They are used by tests and by DB_DRIVER=memory for local runs.
package memory

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is shared by the repositories it hands out so that they see each
// other's writes, like collections of one database.
type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	posts         map[primitive.ObjectID]models.Post
	comments      map[primitive.ObjectID]models.Comment
	notifications map[primitive.ObjectID]models.Notification
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		users:         make(map[primitive.ObjectID]models.User),
		posts:         make(map[primitive.ObjectID]models.Post),
		comments:      make(map[primitive.ObjectID]models.Comment),
		notifications: make(map[primitive.ObjectID]models.Notification),
	}
}

// Users returns the user repository of the store
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Posts returns the post repository of the store
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

// Comments returns the comment repository of the store
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

// Notifications returns the notification repository of the store
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }

// newest orders by creation time descending, ObjectID breaking ties
func newest(aTime, bTime time.Time, aID, bID primitive.ObjectID) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func clonePost(p models.Post) models.Post {
	p.Images = append([]models.Image{}, p.Images...)
	p.Tags = append([]string{}, p.Tags...)
	return p
}

func sortPosts(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return newest(posts[i].CreatedAt, posts[j].CreatedAt, posts[i].ID, posts[j].ID)
	})
}

func sortComments(comments []models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return newest(comments[i].CreatedAt, comments[j].CreatedAt, comments[i].ID, comments[j].ID)
	})
}
