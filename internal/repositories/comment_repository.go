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

// CommentFilter narrows CountComments. Zero fields match everything.
// ExcludeID leaves one comment out, so counts can be taken as if it were gone.
type CommentFilter struct {
	PostID    *primitive.ObjectID
	UserID    *primitive.ObjectID
	ExcludeID *primitive.ObjectID
}

func (f CommentFilter) bson() bson.M {
	filter := bson.M{}
	if f.ExcludeID != nil {
		filter["_id"] = bson.M{"$ne": *f.ExcludeID}
	}
	if f.PostID != nil {
		filter["postId"] = *f.PostID
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	return filter
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error)
	GetCommentsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Comment, error)
	UpdateAuthor(ctx context.Context, userID primitive.ObjectID, name, picURL string) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error)
	DeleteCommentsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteAllComments(ctx context.Context) (int64, error)
	CountComments(ctx context.Context, filter CommentFilter) (int64, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// EnsureIndexes creates the post and author lookup indexes
func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

// CreateComment inserts a new comment
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, comment)
	return mapMongoError(err)
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mapMongoError(err)
	}
	return &comment, nil
}

// GetCommentsByIDs loads the comments with the given IDs
func (r *MongoCommentRepository) GetCommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// GetCommentsByPostID lists the comments on a post, newest first
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"postId": postID})
}

// GetCommentsByUserID lists the comments written by a user
func (r *MongoCommentRepository) GetCommentsByUserID(ctx context.Context, userID primitive.ObjectID) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoCommentRepository) find(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateAuthor refreshes the author snapshot on every comment of a user
func (r *MongoCommentRepository) UpdateAuthor(ctx context.Context, userID primitive.ObjectID, name, picURL string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"userId": userID}, bson.M{"$set": bson.M{
		"studentname":        name,
		"userProfilePic.url": picURL,
	}})
	return err
}

// DeleteComment deletes a comment by ID
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCommentsByPostID deletes every comment on a post
func (r *MongoCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{"postId": postID})
}

// DeleteCommentsByUserID deletes every comment written by a user
func (r *MongoCommentRepository) DeleteCommentsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{"userId": userID})
}

// DeleteAllComments empties the collection
func (r *MongoCommentRepository) DeleteAllComments(ctx context.Context) (int64, error) {
	return r.deleteMany(ctx, bson.M{})
}

func (r *MongoCommentRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountComments counts comments matching filter
func (r *MongoCommentRepository) CountComments(ctx context.Context, filter CommentFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.bson())
}
