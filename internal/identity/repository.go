package identity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for user mirrors
type UserRepository interface {
	UpsertByExternalID(ctx context.Context, u *User) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	DeleteByExternalID(ctx context.Context, externalID string) (*User, error)
}

// CompanyRepository defines persistence operations for company mirrors
type CompanyRepository interface {
	UpsertByExternalOrgID(ctx context.Context, c *Company) (*Company, error)
	GetByExternalOrgID(ctx context.Context, externalOrgID string) (*Company, error)
	GetByID(ctx context.Context, id string) (*Company, error)
	SetPlan(ctx context.Context, id string, plan Plan, seatLimit, jobLimit int) error
	DeleteByExternalOrgID(ctx context.Context, externalOrgID string) (*Company, error)
}

// MemberRepository defines persistence operations for company memberships
type MemberRepository interface {
	Upsert(ctx context.Context, m *CompanyMember) (*CompanyMember, error)
	Get(ctx context.Context, companyID, userID string) (*CompanyMember, error)
	GetByInvitedEmail(ctx context.Context, companyID, email string) (*CompanyMember, error)
	ListByCompany(ctx context.Context, companyID string) ([]*CompanyMember, error)
	CountByStatus(ctx context.Context, companyID string, statuses ...MemberStatus) (int64, error)
	SetStatusByUser(ctx context.Context, userID string, status MemberStatus) error
	Remove(ctx context.Context, companyID, userID string) error
}

/* ------------------------------ users (mongo) ----------------------------- */

type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) UpsertByExternalID(ctx context.Context, u *User) (*User, error) {
	now := time.Now().UTC()
	filter := bson.M{"external_id": u.ExternalID}
	update := bson.M{
		"$set": bson.M{
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"avatar_url": u.AvatarURL,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":         primitive.NewObjectID().Hex(),
			"external_id": u.ExternalID,
			"created_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	var u User
	if err := r.col.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) DeleteByExternalID(ctx context.Context, externalID string) (*User, error) {
	var u User
	if err := r.col.FindOneAndDelete(ctx, bson.M{"external_id": externalID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

/* ---------------------------- companies (mongo) ---------------------------- */

type MongoCompanyRepository struct {
	col *mongo.Collection
}

func NewMongoCompanyRepository(col *mongo.Collection) *MongoCompanyRepository {
	return &MongoCompanyRepository{col: col}
}

func (r *MongoCompanyRepository) UpsertByExternalOrgID(ctx context.Context, c *Company) (*Company, error) {
	now := time.Now().UTC()
	filter := bson.M{"external_org_id": c.ExternalOrgID}
	update := bson.M{
		"$set": bson.M{
			"name":       c.Name,
			"slug":       c.Slug,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":             primitive.NewObjectID().Hex(),
			"external_org_id": c.ExternalOrgID,
			"plan":            PlanFree,
			"seat_limit":      0,
			"job_limit":       0,
			"created_at":      now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated Company
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoCompanyRepository) GetByExternalOrgID(ctx context.Context, externalOrgID string) (*Company, error) {
	var c Company
	if err := r.col.FindOne(ctx, bson.M{"external_org_id": externalOrgID}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCompanyRepository) GetByID(ctx context.Context, id string) (*Company, error) {
	var c Company
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoCompanyRepository) SetPlan(ctx context.Context, id string, plan Plan, seatLimit, jobLimit int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"plan":       plan,
		"seat_limit": seatLimit,
		"job_limit":  jobLimit,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoCompanyRepository) DeleteByExternalOrgID(ctx context.Context, externalOrgID string) (*Company, error) {
	var c Company
	if err := r.col.FindOneAndDelete(ctx, bson.M{"external_org_id": externalOrgID}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

/* ----------------------------- members (mongo) ----------------------------- */

type MongoMemberRepository struct {
	col *mongo.Collection
}

func NewMongoMemberRepository(col *mongo.Collection) *MongoMemberRepository {
	return &MongoMemberRepository{col: col}
}

func (r *MongoMemberRepository) Upsert(ctx context.Context, m *CompanyMember) (*CompanyMember, error) {
	now := time.Now().UTC()
	var filter bson.M
	onInsert := bson.M{
		"company_id": m.CompanyID,
		"created_at": now,
	}
	if m.ID != "" {
		// rows loaded and modified in place (invitation claims) keep their id
		filter = bson.M{"_id": m.ID}
	} else {
		onInsert["_id"] = primitive.NewObjectID().Hex()
		if m.UserID != "" {
			filter = bson.M{"company_id": m.CompanyID, "user_id": m.UserID}
		} else {
			filter = bson.M{"company_id": m.CompanyID, "invited_email": m.InvitedEmail}
		}
	}
	update := bson.M{
		"$set": bson.M{
			"user_id":       m.UserID,
			"invited_email": m.InvitedEmail,
			"role":          m.Role,
			"status":        m.Status,
			"updated_at":    now,
		},
		"$setOnInsert": onInsert,
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated CompanyMember
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoMemberRepository) Get(ctx context.Context, companyID, userID string) (*CompanyMember, error) {
	var m CompanyMember
	err := r.col.FindOne(ctx, bson.M{"company_id": companyID, "user_id": userID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMemberRepository) GetByInvitedEmail(ctx context.Context, companyID, email string) (*CompanyMember, error) {
	var m CompanyMember
	err := r.col.FindOne(ctx, bson.M{"company_id": companyID, "invited_email": email}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMemberRepository) ListByCompany(ctx context.Context, companyID string) ([]*CompanyMember, error) {
	cur, err := r.col.Find(ctx, bson.M{"company_id": companyID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*CompanyMember
	for cur.Next(ctx) {
		var m CompanyMember
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MongoMemberRepository) CountByStatus(ctx context.Context, companyID string, statuses ...MemberStatus) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"company_id": companyID,
		"status":     bson.M{"$in": statuses},
	})
}

func (r *MongoMemberRepository) SetStatusByUser(ctx context.Context, userID string, status MemberStatus) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"user_id": userID}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (r *MongoMemberRepository) Remove(ctx context.Context, companyID, userID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"company_id": companyID, "user_id": userID})
	return err
}
