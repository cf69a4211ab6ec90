package companies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("company not found")
	ErrConflict = errors.New("company with this phone, email or company number already exists")
)

// Repository defines persistence operations for companies
type Repository interface {
	Create(ctx context.Context, c *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetByPhone(ctx context.Context, phone string) (*models.Company, error)
	GetByEmail(ctx context.Context, email string) (*models.Company, error)
	List(ctx context.Context, status string, page models.Page) ([]*models.Company, int64, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Company, error)
	Delete(ctx context.Context, id string) error
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Company) error {
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Company, error) {
	var c models.Company
	if err := r.col.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByPhone(ctx context.Context, phone string) (*models.Company, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) List(ctx context.Context, status string, page models.Page) ([]*models.Company, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	p := page.Normalize()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*models.Company{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (*models.Company, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Company
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
