package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates every index the service relies on. Each call is
// idempotent; errors are aggregated so any problem is visible and startup can
// fail fast.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(collection string, models []mongo.IndexModel) {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			problems = append(problems, collection+": "+err.Error())
		}
	}

	unique := options.Index().SetUnique(true)

	ensure("users", []mongo.IndexModel{
		{Keys: bson.D{{Key: "external_id", Value: 1}}, Options: unique},
	})
	ensure("companies", []mongo.IndexModel{
		{Keys: bson.D{{Key: "external_org_id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
	})
	ensure("company_members", []mongo.IndexModel{
		// One row per (company, user); invited rows have no user yet and are
		// keyed by invited_email instead.
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"user_id": bson.M{"$gt": ""}})},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "invited_email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"invited_email": bson.M{"$gt": ""}})},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	ensure("job_listings", []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "search_blob", Value: "text"}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	ensure("applications", []mongo.IndexModel{
		// Withdrawn applications are reused in place on re-apply, so there is
		// never more than one row per (job, applicant) and a full unique index
		// enforces the invariant at the storage layer.
		{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "applicant_id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	ensure("favorites", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "job_id", Value: 1}}, Options: unique},
	})
	ensure("notifications", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	ensure("profiles", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
	})
	ensure("resumes", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	ensure("experiences", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "order", Value: 1}}},
	})
	ensure("educations", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "order", Value: 1}}},
	})
	ensure("certifications", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})

	if len(problems) > 0 {
		return errors.New("ensure indexes: " + strings.Join(problems, "; "))
	}
	return nil
}

// IsDup reports whether err is a Mongo duplicate-key error.
func IsDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
