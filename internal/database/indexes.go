package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	Companies     = "companies"
	Employees     = "employees"
	Admins        = "admins"
	Sessions      = "sessions"
	Markups       = "markups"
	PricingConfig = "pricing_config"
	Wallets       = "wallets"
	Transactions  = "wallet_transactions"
	Bookings      = "bookings"
	AuditLogs     = "audit_logs"
)

func unique(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
}

func plain(keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys}
}

// indexPlan lists the indexes each collection needs. Uniqueness rules of the
// portal (phone, employeeId, one markup per hotel, sparse company number) live here.
func indexPlan() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		Companies: {
			unique(bson.D{{Key: "phone", Value: 1}}),
			unique(bson.D{{Key: "email", Value: 1}}),
			{Keys: bson.D{{Key: "companyNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			plain(bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		Employees: {
			unique(bson.D{{Key: "employeeId", Value: 1}}),
			unique(bson.D{{Key: "phone", Value: 1}}),
			plain(bson.D{{Key: "companyId", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		Admins: {
			unique(bson.D{{Key: "username", Value: 1}}),
			{Keys: bson.D{{Key: "sub", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		Sessions: {
			unique(bson.D{{Key: "refreshToken", Value: 1}}),
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		Markups: {
			unique(bson.D{{Key: "hotelId", Value: 1}}),
		},
		Transactions: {
			plain(bson.D{{Key: "companyId", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		Bookings: {
			unique(bson.D{{Key: "reference", Value: 1}}),
			plain(bson.D{{Key: "companyId", Value: 1}, {Key: "createdAt", Value: -1}}),
			plain(bson.D{{Key: "employeeId", Value: 1}, {Key: "createdAt", Value: -1}}),
		},
		AuditLogs: {
			plain(bson.D{{Key: "createdAt", Value: -1}}),
		},
	}
}

// EnsureIndexes creates all portal indexes; it is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for col, models := range indexPlan() {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", col, err)
		}
	}
	return nil
}
