package employees

import (
	"context"
	"errors"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/passwords"
	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("employee account is disabled")
	ErrInvalidPhone       = errors.New("invalid phone number")
)

// CreateInput is what a company submits to add an employee.
type CreateInput struct {
	EmployeeID  string
	Name        string
	Email       string
	Phone       string
	Password    string
	Designation string
}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, companyID string, in CreateInput) (*models.Employee, error) {
	phone := textutil.NormalizePhone(in.Phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}
	hash, err := passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	e := &models.Employee{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		EmployeeID:   textutil.Clean(in.EmployeeID),
		Name:         textutil.Clean(in.Name),
		Email:        textutil.NormalizeEmail(in.Email),
		Phone:        phone,
		Designation:  textutil.Clean(in.Designation),
		PasswordHash: hash,
		Status:       models.EmployeeActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the employee only when it belongs to companyID.
func (s *Service) Get(ctx context.Context, companyID, id string) (*models.Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	return s.repo.GetByPhone(ctx, phone)
}

func (s *Service) List(ctx context.Context, companyID string, page models.Page) ([]*models.Employee, int64, error) {
	return s.repo.ListByCompany(ctx, companyID, page)
}

func (s *Service) Update(ctx context.Context, companyID, id string, upd models.EmployeeUpdate) (*models.Employee, error) {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return nil, err
	}
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = textutil.Clean(*upd.Name)
	}
	if upd.Email != nil {
		set["email"] = textutil.NormalizeEmail(*upd.Email)
	}
	if upd.Designation != nil {
		set["designation"] = textutil.Clean(*upd.Designation)
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.Password != nil {
		hash, err := passwords.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		set["passwordHash"] = hash
	}
	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, set)
}

func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DeleteByCompany removes every employee of a company.
func (s *Service) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	return s.repo.DeleteByCompany(ctx, companyID)
}

// Authenticate accepts a phone number or an employee id as identifier.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*models.Employee, error) {
	var (
		e   *models.Employee
		err error
	)
	if phone := textutil.NormalizePhone(identifier); phone != "" {
		e, err = s.repo.GetByPhone(ctx, phone)
	}
	if e == nil {
		e, err = s.repo.GetByEmployeeID(ctx, identifier)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := passwords.Compare(e.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if e.Status == models.EmployeeDisabled {
		return nil, ErrDisabled
	}
	return e, nil
}
