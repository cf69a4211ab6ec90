package companies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("company is blocked")
	ErrNotVerified        = errors.New("phone not verified")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidStatus      = errors.New("invalid company status")
)

// SignupInput is the self-registration payload of a company.
type SignupInput struct {
	Name          string
	ContactName   string
	Email         string
	Phone         string
	Password      string
	CompanyNumber string
	GSTNumber     string
	Address       string
}

// Service encapsulates company business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Signup registers a company in pending state until its phone is verified.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.Company, error) {
	phone := textutil.NormalizePhone(in.Phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}
	hash, err := passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &models.Company{
		ID:            uuid.NewString(),
		Name:          textutil.Clean(in.Name),
		ContactName:   textutil.Clean(in.ContactName),
		Email:         textutil.NormalizeEmail(in.Email),
		Phone:         phone,
		CompanyNumber: textutil.Clean(in.CompanyNumber),
		GSTNumber:     textutil.Clean(in.GSTNumber),
		Address:       textutil.Clean(in.Address),
		PasswordHash:  hash,
		Status:        models.CompanyPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Authenticate checks a phone-or-email identifier and password.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.Company, error) {
	var (
		c   *models.Company
		err error
	)
	if phone := textutil.NormalizePhone(identifier); phone != "" {
		c, err = s.repo.GetByPhone(ctx, phone)
	} else {
		c, err = s.repo.GetByEmail(ctx, textutil.NormalizeEmail(identifier))
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := passwords.Compare(c.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := CheckLoginAllowed(c); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckLoginAllowed rejects blocked and unverified companies.
func CheckLoginAllowed(c *models.Company) error {
	switch c.Status {
	case models.CompanyBlocked:
		return ErrBlocked
	case models.CompanyPending:
		return ErrNotVerified
	}
	return nil
}

// VerifyPhone marks the phone verified and activates a pending company.
func (s *Service) VerifyPhone(ctx context.Context, phone string) (*models.Company, error) {
	c, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	set := bson.M{"phoneVerified": true}
	if c.Status == models.CompanyPending {
		set["status"] = models.CompanyActive
	}
	return s.repo.Update(ctx, c.ID, set)
}

func (s *Service) Get(ctx context.Context, id string) (*models.Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (*models.Company, error) {
	return s.repo.GetByPhone(ctx, phone)
}

func (s *Service) List(ctx context.Context, status string, page models.Page) ([]*models.Company, int64, error) {
	return s.repo.List(ctx, status, page)
}

// UpdateProfile applies company-editable fields. Name and status are admin-only.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd models.CompanyUpdate) (*models.Company, error) {
	upd.Name = nil
	upd.Status = nil
	return s.apply(ctx, id, upd)
}

// AdminUpdate applies any field, including status (active or blocked).
func (s *Service) AdminUpdate(ctx context.Context, id string, upd models.CompanyUpdate) (*models.Company, error) {
	if upd.Status != nil && *upd.Status != models.CompanyActive && *upd.Status != models.CompanyBlocked {
		return nil, ErrInvalidStatus
	}
	return s.apply(ctx, id, upd)
}

func (s *Service) apply(ctx context.Context, id string, upd models.CompanyUpdate) (*models.Company, error) {
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = textutil.Clean(*upd.Name)
	}
	if upd.ContactName != nil {
		set["contactName"] = textutil.Clean(*upd.ContactName)
	}
	if upd.Email != nil {
		set["email"] = textutil.NormalizeEmail(*upd.Email)
	}
	if upd.Address != nil {
		set["address"] = textutil.Clean(*upd.Address)
	}
	if upd.GSTNumber != nil {
		set["gstNumber"] = textutil.Clean(*upd.GSTNumber)
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	c, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, fmt.Errorf("update company %s: %w", id, err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
