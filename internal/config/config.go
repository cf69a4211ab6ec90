package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Supplier  SupplierConfig
	OTP       OTPConfig
	Kafka     KafkaConfig
	MinIO     MinIOConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type MongoDBConfig struct {
	URI         string
	Database    string
	Timeout     time.Duration
	AppName     string
	MaxPoolSize uint64
	MinPoolSize uint64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KeycloakConfig enables admin single sign-on when URL, realm and client id are set.
type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
	AuthRPS       float64
	AuthBurst     int
}

type SupplierConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Currency       string
	SearchCacheTTL time.Duration
	SessionTTL     time.Duration
}

type OTPConfig struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// AdminConfig seeds the first admin account.
type AdminConfig struct {
	Username string
	Password string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("MONGODB_DATABASE", "b2b_portal")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("MONGODB_APP_NAME", "b2b-portal")
	viper.SetDefault("MONGODB_MAX_POOL_SIZE", 100)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 15)
	viper.SetDefault("JWT_REFRESH_TOKEN_TTL", 10080)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("RATE_LIMIT_AUTH_RPS", 1)
	viper.SetDefault("RATE_LIMIT_AUTH_BURST", 5)
	viper.SetDefault("SUPPLIER_TIMEOUT", 30)
	viper.SetDefault("SUPPLIER_CURRENCY", "INR")
	viper.SetDefault("SUPPLIER_SEARCH_CACHE_TTL", 300)
	viper.SetDefault("SUPPLIER_SESSION_TTL", 1800)
	viper.SetDefault("OTP_TTL", 300)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OTP_RESEND_COOLDOWN", 30)
	viper.SetDefault("KAFKA_TOPIC_PREFIX", "b2b")
	viper.SetDefault("MINIO_BUCKET", "b2b-vouchers")

	mongoURI := viper.GetString("MONGODB_URI")
	if mongoURI == "" {
		return nil, fmt.Errorf("environment variable MONGODB_URI is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			CORSOrigins:  splitList(viper.GetString("CORS_ORIGINS")),
		},
		MongoDB: MongoDBConfig{
			URI:         mongoURI,
			Database:    viper.GetString("MONGODB_DATABASE"),
			Timeout:     time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
			AppName:     viper.GetString("MONGODB_APP_NAME"),
			MaxPoolSize: viper.GetUint64("MONGODB_MAX_POOL_SIZE"),
			MinPoolSize: viper.GetUint64("MONGODB_MIN_POOL_SIZE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:          viper.GetString("KEYCLOAK_URL"),
			Realm:        viper.GetString("KEYCLOAK_REALM"),
			ClientID:     viper.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: viper.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:          os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			RefreshTokenTTL: time.Duration(viper.GetInt("JWT_REFRESH_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			AuthRPS:       viper.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:     viper.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		Supplier: SupplierConfig{
			BaseURL:        strings.TrimRight(viper.GetString("SUPPLIER_BASE_URL"), "/"),
			APIKey:         os.Getenv("SUPPLIER_API_KEY"),
			Timeout:        time.Duration(viper.GetInt("SUPPLIER_TIMEOUT")) * time.Second,
			Currency:       viper.GetString("SUPPLIER_CURRENCY"),
			SearchCacheTTL: time.Duration(viper.GetInt("SUPPLIER_SEARCH_CACHE_TTL")) * time.Second,
			SessionTTL:     time.Duration(viper.GetInt("SUPPLIER_SESSION_TTL")) * time.Second,
		},
		OTP: OTPConfig{
			TTL:            time.Duration(viper.GetInt("OTP_TTL")) * time.Second,
			MaxAttempts:    viper.GetInt("OTP_MAX_ATTEMPTS"),
			ResendCooldown: time.Duration(viper.GetInt("OTP_RESEND_COOLDOWN")) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(viper.GetString("KAFKA_BROKERS")),
			TopicPrefix: viper.GetString("KAFKA_TOPIC_PREFIX"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// Warnings lists configuration problems that do not prevent startup.
func (c *Config) Warnings() []string {
	var out []string
	if c.JWT.Secret == "" {
		out = append(out, "JWT_SECRET is not set; set a secure value in production")
	}
	if c.Supplier.BaseURL == "" {
		out = append(out, "SUPPLIER_BASE_URL is not set; hotel search and booking will fail")
	}
	if c.Redis.Host == "" {
		out = append(out, "REDIS_HOST is not set; sessions, OTPs and caches fall back to process memory")
	}
	return out
}

// KeycloakIssuer returns the realm issuer URL, or "" when SSO is not configured.
func (c *Config) KeycloakIssuer() string {
	if c.Keycloak.URL == "" || c.Keycloak.ClientID == "" {
		return ""
	}
	if c.Keycloak.Realm == "" {
		return c.Keycloak.URL
	}
	return strings.TrimRight(c.Keycloak.URL, "/") + "/realms/" + c.Keycloak.Realm
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
