package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("MONGODB_DATABASE", "b2b_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SUPPLIER_BASE_URL", "https://supplier.example.com/api/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "b2b_test", cfg.MongoDB.Database)
	require.Equal(t, "b2b-portal", cfg.MongoDB.AppName)
	require.EqualValues(t, 100, cfg.MongoDB.MaxPoolSize)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "https://supplier.example.com/api", cfg.Supplier.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenTTL)
	require.Empty(t, cfg.Warnings())
}

func TestLoadConfig_RequiresMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestKeycloakIssuer(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, "", cfg.KeycloakIssuer())

	cfg.Keycloak = KeycloakConfig{URL: "http://kc/", Realm: "b2b", ClientID: "portal"}
	require.Equal(t, "http://kc/realms/b2b", cfg.KeycloakIssuer())

	cfg.Keycloak.Realm = ""
	require.Equal(t, "http://kc/", cfg.KeycloakIssuer())
}
