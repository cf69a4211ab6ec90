package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/handlers"
	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/audit"
	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/database"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/oidc"
	"github.com/delonixservices/b2b-agent-sub001/internal/otp"
	"github.com/delonixservices/b2b-agent-sub001/internal/sessions"
	"github.com/delonixservices/b2b-agent-sub001/internal/storage"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/internal/tokens"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
	"github.com/delonixservices/b2b-agent-sub001/pkg/middleware"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// connectMongo retries with exponential backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var (
		client *mongo.Client
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err = database.ConnectMongo(ctx, cfg)
		if err == nil {
			return client, nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, err
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Host + ":" + cfg.Port, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Host, cfg.Port, err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis %s:%s", cfg.Host, cfg.Port)
	return client
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// buildVerifier accepts portal tokens and, when Keycloak is configured, admin SSO tokens.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	chain := middleware.ChainVerifier{tokens.NewVerifier(cfg.JWT.Secret)}
	issuer := cfg.KeycloakIssuer()
	if issuer == "" {
		return chain
	}
	ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
	if err != nil {
		logger.Warnf("failed to initialize OIDC verifier for %s: %v", issuer, err)
		return chain
	}
	logger.Infof("admin SSO enabled (issuer=%s)", issuer)
	return append(chain, oidc.NewAdminVerifier(ver))
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
	logger.Infof("config loaded: keycloak=%v redis=%v kafka=%v minio=%v", cfg.KeycloakIssuer() != "", cfg.Redis.Host != "", len(cfg.Kafka.Brokers) > 0, cfg.MinIO.Endpoint != "")

	ctx := context.Background()

	client, err := connectMongo(ctx, cfg.MongoDB)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to create indexes: %v", err)
	}

	rdb := connectRedis(ctx, cfg.Redis)
	if rdb != nil {
		sessions.SetBlacklistClient(rdb)
		defer func() { _ = rdb.Close() }()
	}

	pub := events.New(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
	defer func() { _ = pub.Close() }()

	var (
		sessionRepo sessions.Repository
		otpStore    otp.Store
		searchKV    hotels.KV
	)
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "b2b:session:")
		otpStore = otp.NewRedisStore(rdb)
		searchKV = hotels.NewRedisKV(rdb)
	} else {
		sessionRepo = sessions.NewMongoRepository(db.Collection(database.Sessions))
		otpStore = otp.NewMemoryStore()
		searchKV = hotels.NewMemoryKV()
	}

	supplierClient := supplier.NewClient(cfg.Supplier)
	companySvc := companies.NewService(companies.NewMongoRepository(db.Collection(database.Companies)))
	employeeSvc := employees.NewService(employees.NewMongoRepository(db.Collection(database.Employees)))
	adminSvc := admins.NewService(admins.NewMongoRepository(db.Collection(database.Admins)))
	walletSvc := wallet.NewService(wallet.NewMongoRepository(db.Collection(database.Wallets), db.Collection(database.Transactions), cfg.Supplier.Currency), pub, cfg.Supplier.Currency)
	pricing := markups.NewService(markups.NewMongoRepository(db.Collection(database.Markups), db.Collection(database.PricingConfig)), cfg.Supplier.Currency)
	hotelSvc := hotels.NewService(supplierClient, pricing, searchKV, hotels.Options{
		Currency:   cfg.Supplier.Currency,
		CacheTTL:   cfg.Supplier.SearchCacheTTL,
		SessionTTL: cfg.Supplier.SessionTTL,
	})

	bookingDeps := bookings.Deps{
		Hotels:   hotelSvc,
		Supplier: supplierClient,
		Pricing:  pricing,
		Wallet:   walletSvc,
		Events:   pub,
		Currency: cfg.Supplier.Currency,
	}
	objects, err := storage.NewMinIOStorage(cfg.MinIO)
	switch {
	case err == nil:
		bookingDeps.Store = objects
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn("MINIO_ENDPOINT is not set; booking vouchers will not be stored")
	default:
		logger.Warnf("object storage unavailable, vouchers disabled: %v", err)
	}

	deps := handlers.Deps{
		Config:    cfg,
		Companies: companySvc,
		Employees: employeeSvc,
		Admins:    adminSvc,
		Sessions:  sessions.NewService(sessionRepo),
		OTP: otp.NewService(otpStore, otp.NotificationSender{Publisher: pub}, otp.Options{
			TTL:            cfg.OTP.TTL,
			MaxAttempts:    cfg.OTP.MaxAttempts,
			ResendCooldown: cfg.OTP.ResendCooldown,
		}),
		Wallet:   walletSvc,
		Markups:  pricing,
		Hotels:   hotelSvc,
		Bookings: bookings.NewService(bookings.NewMongoRepository(db.Collection(database.Bookings)), bookingDeps),
		Audit:    audit.NewLogger(audit.NewMongoRepository(db.Collection(database.AuditLogs))),
		Verifier: buildVerifier(ctx, cfg),
	}

	if created, err := adminSvc.EnsureBootstrap(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Errorf("admin bootstrap failed: %v", err)
	} else if created {
		logger.Infof("bootstrap admin %q created", cfg.Admin.Username)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(ginzap.Ginzap(logger.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger.L(), true))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, "global", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			deps.AuthLimiter = middleware.RedisRateLimitMiddleware(rdb, "auth", cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst, win)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			deps.AuthLimiter = middleware.NamedRateLimitMiddleware("auth", cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when the database answers; Redis, supplier and storage are reported
	r.GET("/ready", func(c *gin.Context) {
		pctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		status := map[string]bool{
			"mongo":    client.Ping(pctx, nil) == nil,
			"redis":    rdb == nil || rdb.Ping(pctx).Err() == nil,
			"supplier": supplierClient.Ping(pctx) == nil,
		}
		if objects != nil {
			status["storage"] = objects.Ping(pctx) == nil
		}
		uptime := time.Since(startTime).String()
		if !status["mongo"] || !status["redis"] {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": status, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": status, "uptime": uptime})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterSwagger(r)
	handlers.RegisterRoutes(r, deps)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting B2B portal API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
