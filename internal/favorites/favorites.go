package favorites

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirepath/hirepath/internal/database"
)

// Favorite bookmarks one listing for one user, unique per (user, job).
type Favorite struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	JobID     string    `bson:"job_id" json:"jobId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type Repository interface {
	Insert(ctx context.Context, f *Favorite) error
	Delete(ctx context.Context, userID, jobID string) error
	Exists(ctx context.Context, userID, jobID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*Favorite, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, f *Favorite) error {
	if f.ID == "" {
		f.ID = primitive.NewObjectID().Hex()
	}
	f.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, f); err != nil {
		if database.IsDup(err) {
			// Already bookmarked; adding twice is a no-op.
			return nil
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID, jobID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "job_id": jobID})
	return err
}

func (r *MongoRepository) Exists(ctx context.Context, userID, jobID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "job_id": jobID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Favorite, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Favorite
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
