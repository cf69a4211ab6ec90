package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-bytes-should-be-long-enough"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	return cfg
}

var employee = models.Principal{Subject: "emp-1", Role: models.RoleEmployee, CompanyID: "c-1", Name: "Asha"}

func TestGenerateAccessToken_RoundTripsPrincipal(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig(), employee, 2*time.Minute)
	require.NoError(t, err)

	tok, err := NewVerifier(testSecret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, employee, models.PrincipalFromClaims(claims))
	require.Equal(t, "b2b-portal", claims["iss"])
}

func TestGenerateAccessToken_RequiresSecret(t *testing.T) {
	_, err := GenerateAccessToken(&config.Config{}, employee, time.Minute)
	require.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig(), employee, -time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier(testSecret).Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestVerify_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig(), employee, 2*time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	_, err := NewVerifier(testSecret).Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}

func TestVerify_AlgNoneRejected(t *testing.T) {
	payload := `{"sub":"u-none","role":"admin","iss":"b2b-portal","exp":9999999999}`
	enc := base64.RawURLEncoding.EncodeToString
	tok := enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + "."
	_, err := NewVerifier(testSecret).Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerify_TamperedRole(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig(), employee, 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), `"employee"`, `"admin"`, 1)))
	_, err = NewVerifier(testSecret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}

func TestExpiresAt(t *testing.T) {
	tokenStr, err := GenerateAccessToken(testConfig(), employee, 10*time.Minute)
	require.NoError(t, err)
	exp, err := NewVerifier(testSecret).ExpiresAt(tokenStr)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(10*time.Minute), exp, 5*time.Second)
}
