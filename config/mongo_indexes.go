package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// applications indexes
	applications := db.Collection("applications")
	_, err := applications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// 1) At most one record per (user, posting) pair. Concurrent
		// first-time creations race here; the losing insert gets a
		// duplicate-key error and is surfaced as a conflict.
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "job_post_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_user_job_post").
				SetUnique(true),
		},
		// 2) Query helper for the my-applications listing
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_created"),
		},
	})
	if err != nil {
		return err
	}

	// job_posts indexes
	jobPosts := db.Collection("job_posts")
	_, err = jobPosts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// full-text search over the free-text fields
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "company", Value: "text"},
				{Key: "description", Value: "text"},
			},
			Options: options.Index().SetName("text_search"),
		},
		// available-jobs listing: active postings before their deadline
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "deadline", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_active_deadline"),
		},
		{
			Keys:    bson.D{{Key: "recruiter_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_recruiter_created"),
		},
	})
	return err
}
