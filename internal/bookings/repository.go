package bookings

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
	ErrNotFound     = errors.New("booking not found")
	ErrConflict     = errors.New("booking reference already exists")
	ErrInvalidState = errors.New("booking is not in a state that allows this action")
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// Transition applies set only while the booking is in state from.
	Transition(ctx context.Context, id, from string, set bson.M) (*Booking, error)
	Update(ctx context.Context, id string, set bson.M) error
	List(ctx context.Context, f Filter, page models.Page) ([]*Booking, int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, b *Booking) error {
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *MongoRepository) Transition(ctx context.Context, id, from string, set bson.M) (*Booking, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b Booking
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set}, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func filterDoc(f Filter) bson.M {
	q := bson.M{}
	if f.CompanyID != "" {
		q["companyId"] = f.CompanyID
	}
	if f.EmployeeID != "" {
		q["employeeId"] = f.EmployeeID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

func (r *MongoRepository) List(ctx context.Context, f Filter, page models.Page) ([]*Booking, int64, error) {
	q := filterDoc(f)
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
