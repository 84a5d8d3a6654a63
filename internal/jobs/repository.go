package jobs

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for job listings
type Repository interface {
	Insert(ctx context.Context, j *JobListing) error
	Get(ctx context.Context, id string) (*JobListing, error)
	Update(ctx context.Context, j *JobListing) error
	Search(ctx context.Context, f SearchFilter) ([]*JobListing, error)
	ListByCompany(ctx context.Context, companyID string, includeClosed bool, limit int) ([]*JobListing, error)
	CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int64, error)
	IncrementApplicationCount(ctx context.Context, id string, delta int64) error
	SetApplicationCount(ctx context.Context, id string, count int64) error
	DeactivateByCompany(ctx context.Context, companyID string) error
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, j *JobListing) error {
	now := time.Now().UTC()
	if j.ID == "" {
		j.ID = primitive.NewObjectID().Hex()
	}
	j.CreatedAt = now
	j.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, j)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*JobListing, error) {
	var j JobListing
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *MongoRepository) Update(ctx context.Context, j *JobListing) error {
	j.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": j.ID}, j)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) Search(ctx context.Context, f SearchFilter) ([]*JobListing, error) {
	filter := bson.M{}
	if !f.IncludeClosed {
		filter["is_active"] = true
	}
	if f.Text != "" {
		filter["$text"] = bson.M{"$search": f.Text}
	}
	if f.CompanyID != "" {
		filter["company_id"] = f.CompanyID
	}
	if f.Location != "" {
		filter["location"] = bson.M{"$regex": primitive.Regex{Pattern: f.Location, Options: "i"}}
	}
	if f.WorkplaceType != "" {
		filter["workplace_type"] = f.WorkplaceType
	}
	if f.EmploymentType != "" {
		filter["employment_type"] = f.EmploymentType
	}
	if f.MinSalary != nil {
		filter["salary_max"] = bson.M{"$gte": *f.MinSalary}
	}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*JobListing
	for cur.Next(ctx) {
		var j JobListing
		if err := cur.Decode(&j); err != nil {
			return nil, err
		}
		out = append(out, &j)
	}
	return out, cur.Err()
}

func (r *MongoRepository) ListByCompany(ctx context.Context, companyID string, includeClosed bool, limit int) ([]*JobListing, error) {
	filter := bson.M{"company_id": companyID}
	if !includeClosed {
		filter["is_active"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*JobListing
	for cur.Next(ctx) {
		var j JobListing
		if err := cur.Decode(&j); err != nil {
			return nil, err
		}
		out = append(out, &j)
	}
	return out, cur.Err()
}

func (r *MongoRepository) CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int64, error) {
	filter := bson.M{"company_id": companyID}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.col.CountDocuments(ctx, filter)
}

func (r *MongoRepository) IncrementApplicationCount(ctx context.Context, id string, delta int64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"application_count": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) SetApplicationCount(ctx context.Context, id string, count int64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"application_count": count, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) DeactivateByCompany(ctx context.Context, companyID string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateMany(ctx,
		bson.M{"company_id": companyID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "closed_at": now, "updated_at": now}})
	return err
}
