// Command admin-seed creates a local portal admin, for first deployments and
// for recovering access when SSO is unavailable.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/database"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *username == "" || len(password) < 8 {
		logger.Fatalf("username and ADMIN_PASSWORD (min 8 characters) are required")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		logger.Fatalf("MONGODB_URI is required")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "b2b_portal"
	}

	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, config.MongoDBConfig{
		URI:     mongoURI,
		AppName: "b2b-admin-seed",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		logger.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(dbName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("ensure indexes: %v", err)
	}
	svc := admins.NewService(admins.NewMongoRepository(db.Collection(database.Admins)))
	a, err := svc.Create(ctx, *username, password, *name)
	if errors.Is(err, admins.ErrConflict) {
		logger.Warnf("admin %q already exists", *username)
		return
	}
	if err != nil {
		logger.Fatalf("create admin: %v", err)
	}
	logger.Infof("admin %q created with id %s", a.Username, a.ID)
}
