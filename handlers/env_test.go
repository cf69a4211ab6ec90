package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/audit"
	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/otp"
	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/delonixservices/b2b-agent-sub001/internal/sessions"
	"github.com/delonixservices/b2b-agent-sub001/internal/storage"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/internal/tokens"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret-0123456789abcdef"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	passwords.Cost = 4
	os.Exit(m.Run())
}

// captureSender remembers the last code sent per phone and purpose.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *captureSender) SendOTP(ctx context.Context, phone, code, purpose string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[purpose+":"+phone] = code
	return nil
}

func (s *captureSender) code(phone, purpose string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[purpose+":"+phone]
}

type testEnv struct {
	t      *testing.T
	r      *gin.Engine
	deps   Deps
	sender *captureSender
	fake   *supplier.Fake
	pub    *events.MemoryPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: testSecret, AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: time.Hour}

	sender := &captureSender{codes: map[string]string{}}
	pub := &events.MemoryPublisher{}
	fake := supplier.NewFake()
	pricing := markups.NewService(markups.NewMemoryRepository(), "INR")
	w := wallet.NewService(wallet.NewMemoryRepository(), pub, "INR")
	h := hotels.NewService(fake, pricing, hotels.NewMemoryKV(), hotels.Options{Currency: "INR", CacheTTL: time.Minute, SessionTTL: 30 * time.Minute})

	d := Deps{
		Config:    cfg,
		Companies: companies.NewService(companies.NewMemoryRepository()),
		Employees: employees.NewService(employees.NewMemoryRepository()),
		Admins:    admins.NewService(admins.NewMemoryRepository()),
		Sessions:  sessions.NewService(sessions.NewMemoryRepository()),
		OTP:       otp.NewService(otp.NewMemoryStore(), sender, otp.Options{TTL: 5 * time.Minute, MaxAttempts: 5, ResendCooldown: 30 * time.Second}),
		Wallet:    w,
		Markups:   pricing,
		Hotels:    h,
		Bookings: bookings.NewService(bookings.NewMemoryRepository(), bookings.Deps{
			Hotels:   h,
			Supplier: fake,
			Pricing:  pricing,
			Wallet:   w,
			Events:   pub,
			Store:    storage.NewMemoryStore(),
			Currency: "INR",
		}),
		Audit:    audit.NewLogger(audit.NewMemoryRepository()),
		Verifier: tokens.NewVerifier(testSecret),
	}
	r := gin.New()
	RegisterRoutes(r, d)
	return &testEnv{t: t, r: r, deps: d, sender: sender, fake: fake, pub: pub}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) token(p models.Principal) string {
	e.t.Helper()
	tok, err := tokens.GenerateAccessToken(e.deps.Config, p, 15*time.Minute)
	require.NoError(e.t, err)
	return tok
}

// activeCompany registers a verified company with an open wallet.
func (e *testEnv) activeCompany(name, phone string) (*models.Company, string) {
	e.t.Helper()
	ctx := context.Background()
	co, err := e.deps.Companies.Signup(ctx, companies.SignupInput{
		Name:        name,
		ContactName: "Owner",
		Email:       name + "@example.com",
		Phone:       phone,
		Password:    "password123",
	})
	require.NoError(e.t, err)
	co, err = e.deps.Companies.VerifyPhone(ctx, co.Phone)
	require.NoError(e.t, err)
	_, err = e.deps.Wallet.Open(ctx, co.ID)
	require.NoError(e.t, err)
	return co, e.token(companyPrincipal(co))
}

func (e *testEnv) adminToken() string {
	e.t.Helper()
	a, err := e.deps.Admins.Create(context.Background(), "root", "password123", "Root")
	require.NoError(e.t, err)
	return e.token(models.Principal{Subject: a.ID, Role: models.RoleAdmin, Name: a.Name})
}

func (e *testEnv) fund(companyID string, rupees int64) {
	e.t.Helper()
	_, err := e.deps.Wallet.Credit(context.Background(), wallet.Movement{CompanyID: companyID, Amount: money.Amount(rupees * 100)})
	require.NoError(e.t, err)
}

var errSupplierDown = &supplier.Error{Op: "search", StatusCode: http.StatusServiceUnavailable, Message: "maintenance"}
