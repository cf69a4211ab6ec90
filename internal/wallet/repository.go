package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrNonZeroBalance    = errors.New("wallet balance is not zero")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
)

// Repository mutates balances with single guarded updates; there is no
// read-modify-write anywhere in the implementations.
type Repository interface {
	Open(ctx context.Context, companyID, currency string) (*Wallet, error)
	Get(ctx context.Context, companyID string) (*Wallet, error)
	Credit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error)
	Debit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error)
	DeleteIfEmpty(ctx context.Context, companyID string) error
	AppendTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, companyID string, page models.Page) ([]*Transaction, int64, error)
}

type MongoRepository struct {
	wallets      *mongo.Collection
	transactions *mongo.Collection
	currency     string
}

// NewMongoRepository stores wallets and their ledger in separate collections.
// currency is used for wallets created implicitly by a credit.
func NewMongoRepository(wallets, transactions *mongo.Collection, currency string) *MongoRepository {
	return &MongoRepository{wallets: wallets, transactions: transactions, currency: currency}
}

// Open creates an empty wallet. Opening an existing wallet returns it unchanged.
func (r *MongoRepository) Open(ctx context.Context, companyID, currency string) (*Wallet, error) {
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"balance":   money.Amount(0),
		"currency":  currency,
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var w Wallet
	if err := r.wallets.FindOneAndUpdate(ctx, bson.M{"_id": companyID}, update, opts).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *MongoRepository) Get(ctx context.Context, companyID string) (*Wallet, error) {
	var w Wallet
	if err := r.wallets.FindOne(ctx, bson.M{"_id": companyID}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *MongoRepository) Credit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$inc":         bson.M{"balance": amount},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now, "currency": r.currency},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var w Wallet
	if err := r.wallets.FindOneAndUpdate(ctx, bson.M{"_id": companyID}, update, opts).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Debit subtracts amount only if the balance covers it, in one update.
func (r *MongoRepository) Debit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var w Wallet
	err := r.wallets.FindOneAndUpdate(ctx, debitFilter(companyID, amount), debitUpdate(amount, time.Now().UTC()), opts).Decode(&w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	n, err := r.wallets.CountDocuments(ctx, bson.M{"_id": companyID})
	if err != nil {
		return nil, err
	}
	return nil, debitMiss(n)
}

// debitFilter matches the wallet only while its balance covers amount.
func debitFilter(companyID string, amount money.Amount) bson.M {
	return bson.M{"_id": companyID, "balance": bson.M{"$gte": amount}}
}

func debitUpdate(amount money.Amount, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"balance": -amount},
		"$set": bson.M{"updatedAt": now},
	}
}

// debitMiss explains a guarded debit that matched nothing, given how many
// wallets exist under the id.
func debitMiss(wallets int64) error {
	if wallets == 0 {
		return ErrNotFound
	}
	return ErrInsufficientFunds
}

func (r *MongoRepository) DeleteIfEmpty(ctx context.Context, companyID string) error {
	res, err := r.wallets.DeleteOne(ctx, bson.M{"_id": companyID, "balance": 0})
	if err != nil {
		return err
	}
	if res.DeletedCount == 1 {
		return nil
	}
	n, err := r.wallets.CountDocuments(ctx, bson.M{"_id": companyID})
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return ErrNonZeroBalance
}

func (r *MongoRepository) AppendTransaction(ctx context.Context, tx *Transaction) error {
	_, err := r.transactions.InsertOne(ctx, tx)
	return err
}

func (r *MongoRepository) ListTransactions(ctx context.Context, companyID string, page models.Page) ([]*Transaction, int64, error) {
	page = page.Normalize()
	filter := bson.M{"companyId": companyID}
	total, err := r.transactions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
	cur, err := r.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []*Transaction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
