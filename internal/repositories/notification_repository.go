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

// NotificationFilter selects notifications for bulk operations. Zero fields
// match everything; an empty filter matches the whole collection.
type NotificationFilter struct {
	UserID     *primitive.ObjectID
	PostID     *primitive.ObjectID
	CommentIDs []primitive.ObjectID
}

func (f NotificationFilter) bson() bson.M {
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.PostID != nil {
		filter["postId"] = *f.PostID
	}
	if f.CommentIDs != nil {
		filter["commentId"] = bson.M{"$in": f.CommentIDs}
	}
	return filter
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	GetNotificationsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkViewed(ctx context.Context, id primitive.ObjectID) error
	MarkAllViewed(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnviewed(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountNotifications(ctx context.Context) (int64, error)
	NotificationTargets(ctx context.Context, filter NotificationFilter) ([]primitive.ObjectID, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
	DeleteNotifications(ctx context.Context, filter NotificationFilter) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// EnsureIndexes creates the inbox and cascade lookup indexes
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "viewed", Value: 1}}},
		{Keys: bson.D{{Key: "postId", Value: 1}}},
		{Keys: bson.D{{Key: "commentId", Value: 1}}},
	})
	return err
}

// CreateNotification inserts a new unviewed notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	now := time.Now()
	notification.ID = primitive.NewObjectID()
	notification.Viewed = false
	notification.CreatedAt = now
	notification.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, notification)
	return mapMongoError(err)
}

// GetNotificationByID retrieves a notification by ID
func (r *MongoNotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification); err != nil {
		return nil, mapMongoError(err)
	}
	return &notification, nil
}

// GetNotificationsByUserID lists a user's notifications, newest first
func (r *MongoNotificationRepository) GetNotificationsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkViewed marks one notification viewed
func (r *MongoNotificationRepository) MarkViewed(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"viewed": true, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllViewed marks every unviewed notification of a user viewed
func (r *MongoNotificationRepository) MarkAllViewed(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "viewed": false},
		bson.M{"$set": bson.M{"viewed": true, "updatedAt": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnviewed counts a user's unviewed notifications
func (r *MongoNotificationRepository) CountUnviewed(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "viewed": false})
}

// CountNotifications returns the size of the collection
func (r *MongoNotificationRepository) CountNotifications(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// NotificationTargets returns the distinct recipients of the matching notifications
func (r *MongoNotificationRepository) NotificationTargets(ctx context.Context, filter NotificationFilter) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "userId", filter.bson())
	if err != nil {
		return nil, err
	}
	targets := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			targets = append(targets, id)
		}
	}
	return targets, nil
}

// DeleteNotification deletes one notification
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotifications deletes the matching notifications
func (r *MongoNotificationRepository) DeleteNotifications(ctx context.Context, filter NotificationFilter) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, filter.bson())
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
