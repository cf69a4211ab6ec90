package admins

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingSubject     = errors.New("claims missing 'sub'")
)

// Service encapsulates admin account logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates an SSO admin from verified OIDC claims.
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.Admin, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSubject
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	username, _ := claims["preferred_username"].(string)
	if username == "" {
		username = email
	}
	if username == "" {
		username = "sso:" + sub
	}
	return s.repo.UpsertBySub(ctx, &models.Admin{
		Sub:      sub,
		Username: strings.ToLower(username),
		Email:    email,
		Name:     name,
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	return s.repo.GetBySub(ctx, sub)
}

// Create adds a local admin with a password.
func (s *Service) Create(ctx context.Context, username, password, name string) (*models.Admin, error) {
	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a := &models.Admin{
		ID:           uuid.NewString(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	a, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := passwords.Compare(a.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// EnsureBootstrap creates the first admin when none exists. It reports whether
// an account was created.
func (s *Service) EnsureBootstrap(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, username, password, "Administrator"); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
