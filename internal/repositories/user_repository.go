package repositories

import (
	"context"
	"time"

	"github.com/anonto42/campustrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByStudentName(ctx context.Context, name string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetVerificationStatus(ctx context.Context, id primitive.ObjectID, verified bool) error
	SetPostCounters(ctx context.Context, id primitive.ObjectID, posts, resolved, unresolved int64) error
	SetNotificationCount(ctx context.Context, id primitive.ObjectID, count int64) error
	MarkNotificationsSeen(ctx context.Context, id primitive.ObjectID, at time.Time) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	DeleteAllUsers(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique login indexes
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "studentname", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

// CreateUser inserts a new user. Counters start at zero.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.LastViewedNotifications.IsZero() {
		user.LastViewedNotifications = now
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mapMongoError(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapMongoError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByStudentName retrieves a user by display name
func (r *MongoUserRepository) GetUserByStudentName(ctx context.Context, name string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"studentname": name})
}

// GetUsers lists every user, newest first
func (r *MongoUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

// GetUsersByIDs loads the users with the given IDs in no particular order
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile writes the editable profile fields
func (r *MongoUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"email":        user.Email,
			"studentname":  user.StudentName,
			"password":     user.Password,
			"profilePic":   user.ProfilePic,
			"college_year": user.CollegeYear,
			"department":   user.Department,
			"updatedAt":    user.UpdatedAt,
		},
	}
	return r.updateOne(ctx, user.ID, update)
}

// SetVerificationStatus sets the verified badge
func (r *MongoUserRepository) SetVerificationStatus(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"verificationStatus": verified, "updatedAt": time.Now()}})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPostCounters overwrites postCount, resolvedCount and unresolvedCount.
// A missing user is not an error.
func (r *MongoUserRepository) SetPostCounters(ctx context.Context, id primitive.ObjectID, posts, resolved, unresolved int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"postCount":       posts,
		"resolvedCount":   resolved,
		"unresolvedCount": unresolved,
	}})
	return err
}

// SetNotificationCount overwrites notificationCount. A missing user is not an error.
func (r *MongoUserRepository) SetNotificationCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notificationCount": count}})
	return err
}

// MarkNotificationsSeen zeroes notificationCount and stamps lastViewedNotifications
func (r *MongoUserRepository) MarkNotificationsSeen(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"notificationCount": 0, "lastViewedNotifications": at}})
}

// DeleteUser deletes a user by ID
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllUsers empties the collection, admins included
func (r *MongoUserRepository) DeleteAllUsers(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountUsers returns the number of users
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
