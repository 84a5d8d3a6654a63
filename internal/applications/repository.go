package applications

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/database"
)

// Repository defines persistence operations for applications. Insert relies on
// the unique (job_id, applicant_id) index to reject a concurrent duplicate
// apply; the violation surfaces as ErrDuplicateApplication.
type Repository interface {
	Insert(ctx context.Context, a *Application) error
	Update(ctx context.Context, a *Application) error
	Get(ctx context.Context, id string) (*Application, error)
	GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*Application, error)
	ListByApplicant(ctx context.Context, applicantID string, limit int) ([]*Application, error)
	ListByCompany(ctx context.Context, companyID, jobID string, statuses []Status, limit int) ([]*Application, error)
	ListByJobStatuses(ctx context.Context, jobID string, statuses ...Status) ([]*Application, error)
	CountNonWithdrawn(ctx context.Context, jobID string) (int64, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, a *Application) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if database.IsDup(err) {
			return fmt.Errorf("%w: job %s", apperrors.ErrDuplicateApplication, a.JobID)
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, a *Application) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Application, error) {
	var a Application
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) GetByJobAndApplicant(ctx context.Context, jobID, applicantID string) (*Application, error) {
	var a Application
	err := r.col.FindOne(ctx, bson.M{"job_id": jobID, "applicant_id": applicantID}).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) ListByApplicant(ctx context.Context, applicantID string, limit int) ([]*Application, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{"applicant_id": applicantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) ListByCompany(ctx context.Context, companyID, jobID string, statuses []Status, limit int) ([]*Application, error) {
	filter := bson.M{"company_id": companyID}
	if jobID != "" {
		filter["job_id"] = jobID
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) ListByJobStatuses(ctx context.Context, jobID string, statuses ...Status) ([]*Application, error) {
	cur, err := r.col.Find(ctx, bson.M{"job_id": jobID, "status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) CountNonWithdrawn(ctx context.Context, jobID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"job_id": jobID, "status": bson.M{"$ne": StatusWithdrawn}})
}
