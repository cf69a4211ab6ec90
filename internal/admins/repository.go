package admins

import (
	"context"
	"errors"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("admin not found")
	ErrConflict = errors.New("admin already exists")
)

// Repository defines persistence operations for admins
type Repository interface {
	Create(ctx context.Context, a *models.Admin) error
	UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error)
	GetBySub(ctx context.Context, sub string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a new repository for the given collection
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, a *models.Admin) error {
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// UpsertBySub refreshes profile fields of an SSO admin, creating it on first sight.
func (r *MongoRepository) UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	now := time.Now().UTC()
	filter := bson.M{"sub": a.Sub}
	update := bson.M{
		"$set": bson.M{
			"email":     a.Email,
			"name":      a.Name,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"username":  a.Username,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.Admin
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var a models.Admin
	if err := r.col.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoRepository) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"sub": sub})
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
