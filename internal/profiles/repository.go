package profiles

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository persists candidate profiles, one row per user.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *Profile) (*Profile, error)
	GetByUser(ctx context.Context, userID string) (*Profile, error)
}

// ResumeRepository persists uploaded resume metadata.
type ResumeRepository interface {
	Insert(ctx context.Context, r *Resume) error
	GetByID(ctx context.Context, id string) (*Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*Resume, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

// MongoProfileRepository implements ProfileRepository using MongoDB
type MongoProfileRepository struct {
	col *mongo.Collection
}

func NewMongoProfileRepository(col *mongo.Collection) *MongoProfileRepository {
	return &MongoProfileRepository{col: col}
}

func (r *MongoProfileRepository) Upsert(ctx context.Context, p *Profile) (*Profile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"headline":         p.Headline,
			"summary":          p.Summary,
			"location":         p.Location,
			"contact_links":    p.ContactLinks,
			"years_experience": p.YearsExperience,
			"skills":           p.Skills,
			"open_to_work":     p.OpenToWork,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"user_id":    p.UserID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out Profile
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"user_id": p.UserID}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoProfileRepository) GetByUser(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MongoResumeRepository implements ResumeRepository using MongoDB
type MongoResumeRepository struct {
	col *mongo.Collection
}

func NewMongoResumeRepository(col *mongo.Collection) *MongoResumeRepository {
	return &MongoResumeRepository{col: col}
}

func (r *MongoResumeRepository) Insert(ctx context.Context, res *Resume) error {
	now := time.Now().UTC()
	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	res.CreatedAt = now
	res.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, res)
	return err
}

func (r *MongoResumeRepository) GetByID(ctx context.Context, id string) (*Resume, error) {
	var res Resume
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *MongoResumeRepository) ListByUser(ctx context.Context, userID string) ([]*Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Resume
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoResumeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SetDefault flags one resume and clears the flag on the user's others.
func (r *MongoResumeRepository) SetDefault(ctx context.Context, userID, id string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "_id": bson.M{"$ne": id}, "is_default": true},
		bson.M{"$set": bson.M{"is_default": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_default": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
