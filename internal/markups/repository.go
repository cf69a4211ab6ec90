package markups

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

var ErrNotFound = errors.New("markup not found")

// Repository persists markups and the pricing config.
type Repository interface {
	Upsert(ctx context.Context, m *Markup) (*Markup, error)
	Get(ctx context.Context, hotelID string) (*Markup, error)
	ListByHotels(ctx context.Context, hotelIDs []string) ([]*Markup, error)
	List(ctx context.Context, page models.Page) ([]*Markup, int64, error)
	Delete(ctx context.Context, hotelID string) error
	GetConfig(ctx context.Context) (*PricingConfig, error)
	SaveConfig(ctx context.Context, cfg *PricingConfig) error
}

type MongoRepository struct {
	markups *mongo.Collection
	config  *mongo.Collection
}

func NewMongoRepository(markups, config *mongo.Collection) *MongoRepository {
	return &MongoRepository{markups: markups, config: config}
}

// Upsert replaces the rule of a hotel. The unique hotelId index keeps one markup per hotel.
func (r *MongoRepository) Upsert(ctx context.Context, m *Markup) (*Markup, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"type":      m.Type,
			"value":     m.Value,
			"updatedBy": m.UpdatedBy,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out Markup
	err := r.markups.FindOneAndUpdate(ctx, bson.M{"hotelId": m.HotelID}, update, opts).Decode(&out)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost an upsert race on the unique index; the document exists now
		err = r.markups.FindOneAndUpdate(ctx, bson.M{"hotelId": m.HotelID}, bson.M{"$set": update["$set"]}, opts).Decode(&out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoRepository) Get(ctx context.Context, hotelID string) (*Markup, error) {
	var m Markup
	if err := r.markups.FindOne(ctx, bson.M{"hotelId": hotelID}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoRepository) ListByHotels(ctx context.Context, hotelIDs []string) ([]*Markup, error) {
	out := []*Markup{}
	if len(hotelIDs) == 0 {
		return out, nil
	}
	cur, err := r.markups.Find(ctx, bson.M{"hotelId": bson.M{"$in": hotelIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) List(ctx context.Context, page models.Page) ([]*Markup, int64, error) {
	page = page.Normalize()
	total, err := r.markups.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "hotelId", Value: 1}}).SetSkip(page.Skip()).SetLimit(int64(page.Limit))
	cur, err := r.markups.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*Markup{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MongoRepository) Delete(ctx context.Context, hotelID string) error {
	res, err := r.markups.DeleteOne(ctx, bson.M{"hotelId": hotelID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConfig returns nil without error when the config was never saved.
func (r *MongoRepository) GetConfig(ctx context.Context) (*PricingConfig, error) {
	var cfg PricingConfig
	if err := r.config.FindOne(ctx, bson.M{"_id": ConfigID}).Decode(&cfg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *MongoRepository) SaveConfig(ctx context.Context, cfg *PricingConfig) error {
	cfg.ID = ConfigID
	_, err := r.config.ReplaceOne(ctx, bson.M{"_id": ConfigID}, cfg, options.Replace().SetUpsert(true))
	return err
}
