package profiles

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The three profile sub-resources (experience, education, certification) are
// independent CRUD lists under a user.

type ExperienceRepository interface {
	Insert(ctx context.Context, e *Experience) error
	GetByID(ctx context.Context, id string) (*Experience, error)
	Update(ctx context.Context, e *Experience) error
	ListByUser(ctx context.Context, userID string) ([]*Experience, error)
	Delete(ctx context.Context, id string) error
}

type EducationRepository interface {
	Insert(ctx context.Context, e *Education) error
	GetByID(ctx context.Context, id string) (*Education, error)
	Update(ctx context.Context, e *Education) error
	ListByUser(ctx context.Context, userID string) ([]*Education, error)
	Delete(ctx context.Context, id string) error
}

type CertificationRepository interface {
	Insert(ctx context.Context, c *Certification) error
	GetByID(ctx context.Context, id string) (*Certification, error)
	Update(ctx context.Context, c *Certification) error
	ListByUser(ctx context.Context, userID string) ([]*Certification, error)
	Delete(ctx context.Context, id string) error
}

type MongoExperienceRepository struct {
	col *mongo.Collection
}

func NewMongoExperienceRepository(col *mongo.Collection) *MongoExperienceRepository {
	return &MongoExperienceRepository{col: col}
}

func (r *MongoExperienceRepository) Insert(ctx context.Context, e *Experience) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *MongoExperienceRepository) GetByID(ctx context.Context, id string) (*Experience, error) {
	var e Experience
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoExperienceRepository) Update(ctx context.Context, e *Experience) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoExperienceRepository) ListByUser(ctx context.Context, userID string) ([]*Experience, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "start_date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Experience
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoExperienceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type MongoEducationRepository struct {
	col *mongo.Collection
}

func NewMongoEducationRepository(col *mongo.Collection) *MongoEducationRepository {
	return &MongoEducationRepository{col: col}
}

func (r *MongoEducationRepository) Insert(ctx context.Context, e *Education) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *MongoEducationRepository) GetByID(ctx context.Context, id string) (*Education, error) {
	var e Education
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoEducationRepository) Update(ctx context.Context, e *Education) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoEducationRepository) ListByUser(ctx context.Context, userID string) ([]*Education, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "start_date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Education
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoEducationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type MongoCertificationRepository struct {
	col *mongo.Collection
}

func NewMongoCertificationRepository(col *mongo.Collection) *MongoCertificationRepository {
	return &MongoCertificationRepository{col: col}
}

func (r *MongoCertificationRepository) Insert(ctx context.Context, c *Certification) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *MongoCertificationRepository) GetByID(ctx context.Context, id string) (*Certification, error) {
	var c Certification
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCertificationRepository) Update(ctx context.Context, c *Certification) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCertificationRepository) ListByUser(ctx context.Context, userID string) ([]*Certification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Certification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoCertificationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
