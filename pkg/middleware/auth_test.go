package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/sessions"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts a fixed set of raw tokens
type fakeVerifier map[string]map[string]interface{}

func (f fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if claims, ok := f[raw]; ok {
		return &fakeToken{data: claims}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

var companyVerifier = fakeVerifier{
	"goodtoken": {"sub": "c-1", "role": "company", "companyId": "c-1", "name": "Acme"},
	"norole":    {"sub": "kc-user", "email": "x@example.com"},
}

func serve(g *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func okEngine(mw ...gin.HandlerFunc) *gin.Engine {
	g := gin.New()
	g.GET("/", append(mw, func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"principal": p})
	})...)
	return g
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serve(okEngine(AuthMiddleware(companyVerifier)), "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	rw := serve(okEngine(AuthMiddleware(companyVerifier)), "BadHeader")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serve(okEngine(AuthMiddleware(companyVerifier)), "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)

	var got struct {
		Principal models.Principal `json:"principal"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, models.RoleCompany, got.Principal.Role)
	require.Equal(t, "c-1", got.Principal.CompanyID)
}

func TestAuthMiddleware_RejectsTokenWithoutRole(t *testing.T) {
	rw := serve(okEngine(AuthMiddleware(companyVerifier)), "Bearer norole")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_RejectsBlacklistedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)
	defer sessions.SetBlacklistClient(nil)

	require.NoError(t, sessions.BlacklistAccessToken(context.Background(), "goodtoken", 5*time.Second))

	rw := serve(okEngine(AuthMiddleware(companyVerifier)), "Bearer goodtoken")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestRequireRole(t *testing.T) {
	g := okEngine(AuthMiddleware(companyVerifier), RequireRole(models.RoleCompany, models.RoleEmployee))
	require.Equal(t, http.StatusOK, serve(g, "Bearer goodtoken").Code)

	admin := okEngine(AuthMiddleware(companyVerifier), RequireRole(models.RoleAdmin))
	require.Equal(t, http.StatusForbidden, serve(admin, "Bearer goodtoken").Code)

	bare := okEngine(RequireRole(models.RoleAdmin))
	require.Equal(t, http.StatusUnauthorized, serve(bare, "").Code)
}

func TestChainVerifier(t *testing.T) {
	admins := fakeVerifier{"sso": {"sub": "kc-1", "role": "admin"}}
	chain := ChainVerifier{companyVerifier, nil, admins}

	_, err := chain.Verify(context.Background(), "goodtoken")
	require.NoError(t, err)
	_, err = chain.Verify(context.Background(), "sso")
	require.NoError(t, err)
	_, err = chain.Verify(context.Background(), "unknown")
	require.Error(t, err)

	_, err = ChainVerifier{}.Verify(context.Background(), "goodtoken")
	require.Error(t, err)
}
