package memory

import (
	"context"
	"sort"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository implements repositories.UserRepository in memory
type UserRepository struct {
	s *Store
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.StudentName == user.StudentName {
			return repositories.ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.LastViewedNotifications.IsZero() {
		user.LastViewedNotifications = now
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) GetUserByStudentName(_ context.Context, name string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return u.StudentName == name })
}

func (r *UserRepository) findOne(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) GetUsers(_ context.Context) ([]models.User, error) {
	return r.find(func(models.User) bool { return true }), nil
}

func (r *UserRepository) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	set := idSet(ids)
	return r.find(func(u models.User) bool {
		_, ok := set[u.ID]
		return ok
	}), nil
}

func (r *UserRepository) find(match func(models.User) bool) []models.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []models.User{}
	for _, u := range r.s.users {
		if match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return newest(users[i].CreatedAt, users[j].CreatedAt, users[i].ID, users[j].ID)
	})
	return users
}

func (r *UserRepository) update(id primitive.ObjectID, fn func(u *models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&u)
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, other := range r.s.users {
		if id != user.ID && (other.Email == user.Email || other.StudentName == user.StudentName) {
			return repositories.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	u.Email = user.Email
	u.StudentName = user.StudentName
	u.Password = user.Password
	u.ProfilePic = user.ProfilePic
	u.CollegeYear = user.CollegeYear
	u.Department = user.Department
	u.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = u
	return nil
}

func (r *UserRepository) SetVerificationStatus(_ context.Context, id primitive.ObjectID, verified bool) error {
	return r.update(id, func(u *models.User) {
		u.VerificationStatus = verified
		u.UpdatedAt = time.Now()
	})
}

func (r *UserRepository) SetPostCounters(_ context.Context, id primitive.ObjectID, posts, resolved, unresolved int64) error {
	err := r.update(id, func(u *models.User) {
		u.PostCount = posts
		u.ResolvedCount = resolved
		u.UnresolvedCount = unresolved
	})
	if err == repositories.ErrNotFound {
		return nil
	}
	return err
}

func (r *UserRepository) SetNotificationCount(_ context.Context, id primitive.ObjectID, count int64) error {
	err := r.update(id, func(u *models.User) { u.NotificationCount = count })
	if err == repositories.ErrNotFound {
		return nil
	}
	return err
}

func (r *UserRepository) MarkNotificationsSeen(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.NotificationCount = 0
		u.LastViewedNotifications = at
	})
}

func (r *UserRepository) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepository) DeleteAllUsers(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := int64(len(r.s.users))
	r.s.users = make(map[primitive.ObjectID]models.User)
	return n, nil
}

func (r *UserRepository) CountUsers(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}
