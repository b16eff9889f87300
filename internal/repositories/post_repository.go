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

// PostFilter narrows CountPosts. Zero fields match everything.
// ExcludeID leaves one post out, so counts can be taken as if it were gone.
type PostFilter struct {
	UserID    *primitive.ObjectID
	Status    models.PostStatus
	ExcludeID *primitive.ObjectID
}

func (f PostFilter) bson() bson.M {
	filter := bson.M{}
	if f.ExcludeID != nil {
		filter["_id"] = bson.M{"$ne": *f.ExcludeID}
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	UpdateAuthor(ctx context.Context, userID primitive.ObjectID, name, picURL string) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	SetCommentCount(ctx context.Context, id primitive.ObjectID, count int64) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	DeletePostsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteAllPosts(ctx context.Context) (int64, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the owner and feed indexes
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Images == nil {
		post.Images = []models.Image{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return mapMongoError(err)
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, mapMongoError(err)
	}
	return &post, nil
}

// GetPostsByIDs loads the posts with the given IDs
func (r *MongoPostRepository) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, 0, 0)
}

// GetPostsByUserID retrieves posts by a specific user, newest first. limit 0 means all.
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{"userId": userID}, skip, limit)
}

// GetAllPosts retrieves all posts, newest first. limit 0 means all.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost writes the editable fields of an existing post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":        post.Title,
			"description":  post.Description,
			"category":     post.Category,
			"college_year": post.CollegeYear,
			"department":   post.Department,
			"itemType":     post.ItemType,
			"images":       post.Images,
			"status":       post.Status,
			"tags":         post.Tags,
			"updatedAt":    post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAuthor refreshes the author snapshot on every post of a user
func (r *MongoPostRepository) UpdateAuthor(ctx context.Context, userID primitive.ObjectID, name, picURL string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"userId": userID}, bson.M{"$set": bson.M{
		"studentname":        name,
		"userProfilePic.url": picURL,
	}})
	return err
}

// IncrementViews atomically adds one view and returns the updated post
func (r *MongoPostRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&post)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return &post, nil
}

// SetCommentCount overwrites commentCount
func (r *MongoPostRepository) SetCommentCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"commentCount": count}})
	return err
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePostsByUserID deletes every post owned by a user
func (r *MongoPostRepository) DeletePostsByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteAllPosts empties the collection
func (r *MongoPostRepository) DeleteAllPosts(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountPosts counts posts matching filter
func (r *MongoPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.bson())
}
