package memory

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationRepository implements repositories.NotificationRepository in memory
type NotificationRepository struct {
	s *Store
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func matchNotification(f repositories.NotificationFilter, n models.Notification) bool {
	if f.UserID != nil && n.UserID != *f.UserID {
		return false
	}
	if f.PostID != nil && n.PostID != *f.PostID {
		return false
	}
	if f.CommentIDs != nil {
		if _, ok := idSet(f.CommentIDs)[n.CommentID]; !ok {
			return false
		}
	}
	return true
}

func (r *NotificationRepository) CreateNotification(_ context.Context, notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	notification.ID = primitive.NewObjectID()
	notification.Viewed = false
	notification.CreatedAt = now
	notification.UpdatedAt = now
	r.s.notifications[notification.ID] = *notification
	return nil
}

func (r *NotificationRepository) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &n, nil
}

func (r *NotificationRepository) GetNotificationsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return newest(list[i].CreatedAt, list[j].CreatedAt, list[i].ID, list[j].ID)
	})
	return list, nil
}

func (r *NotificationRepository) MarkViewed(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Viewed = true
	n.UpdatedAt = time.Now()
	r.s.notifications[id] = n
	return nil
}

func (r *NotificationRepository) MarkAllViewed(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.Viewed {
			n.Viewed = true
			n.UpdatedAt = time.Now()
			r.s.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *NotificationRepository) CountUnviewed(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Viewed {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) CountNotifications(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.notifications)), nil
}

func (r *NotificationRepository) NotificationTargets(_ context.Context, filter repositories.NotificationFilter) ([]primitive.ObjectID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := map[primitive.ObjectID]struct{}{}
	targets := []primitive.ObjectID{}
	for _, n := range r.s.notifications {
		if !matchNotification(filter, n) {
			continue
		}
		if _, ok := seen[n.UserID]; !ok {
			seen[n.UserID] = struct{}{}
			targets = append(targets, n.UserID)
		}
	}
	return targets, nil
}

func (r *NotificationRepository) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *NotificationRepository) DeleteNotifications(_ context.Context, filter repositories.NotificationFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, n := range r.s.notifications {
		if matchNotification(filter, n) {
			delete(r.s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
