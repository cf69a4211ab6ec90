package employees

import (
	"context"
	"errors"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("employee not found")
	ErrConflict = errors.New("employee id or phone already registered")
)

// Repository defines persistence operations for employees
type Repository interface {
	Create(ctx context.Context, e *models.Employee) error
	GetByID(ctx context.Context, id string) (*models.Employee, error)
	GetByPhone(ctx context.Context, phone string) (*models.Employee, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error)
	ListByCompany(ctx context.Context, companyID string, page models.Page) ([]*models.Employee, int64, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, e *models.Employee) error {
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	var e models.Employee
	if err := r.col.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *MongoRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"employeeId": employeeID})
}

func (r *MongoRepository) ListByCompany(ctx context.Context, companyID string, page models.Page) ([]*models.Employee, int64, error) {
	page = page.Normalize()
	filter := bson.M{"companyId": companyID}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*models.Employee{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (*models.Employee, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Employee
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &e, nil
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

func (r *MongoRepository) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"companyId": companyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
