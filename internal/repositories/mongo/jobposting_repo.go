package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentrail/talentrail/internal/models"
	"github.com/talentrail/talentrail/internal/utils"
)

type JobPostRepository interface {
	Insert(ctx context.Context, p *models.JobPost) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.JobPost, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.JobPost, error)
	ListAvailable(ctx context.Context, f models.JobPostFilter, now time.Time) ([]models.JobPost, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type jobPostRepo struct {
	col *mongo.Collection
}

func NewJobPostRepo(db *mongo.Database) JobPostRepository {
	return &jobPostRepo{col: db.Collection("job_posts")}
}

func (r *jobPostRepo) Insert(ctx context.Context, p *models.JobPost) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *jobPostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.JobPost, error) {
	var p models.JobPost
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *jobPostRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.JobPost, error) {
	out := make(map[primitive.ObjectID]*models.JobPost, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.JobPost
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		out[posts[i].ID] = &posts[i]
	}
	return out, nil
}

// ListAvailable returns active postings whose deadline has not passed,
// newest first, optionally narrowed by filter attributes and free-text
// search over the indexed text fields.
func (r *jobPostRepo) ListAvailable(ctx context.Context, f models.JobPostFilter, now time.Time) ([]models.JobPost, error) {
	filter := bson.M{
		"is_active": true,
		"deadline":  bson.M{"$gte": now.UTC()},
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Level != "" {
		filter["level"] = f.Level
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}

	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JobPost
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobPostRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
