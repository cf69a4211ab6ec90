package employees

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MemoryRepository is an in-process Repository used by tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Employee
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*models.Employee{}}
}

func (m *MemoryRepository) Create(ctx context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.EmployeeID == e.EmployeeID || o.Phone == e.Phone {
			return ErrConflict
		}
	}
	cp := *e
	m.store[e.ID] = &cp
	return nil
}

func (m *MemoryRepository) find(match func(*models.Employee) bool) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.store {
		if match(e) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	return m.find(func(e *models.Employee) bool { return e.ID == id })
}

func (m *MemoryRepository) GetByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	return m.find(func(e *models.Employee) bool { return e.Phone == phone })
}

func (m *MemoryRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error) {
	return m.find(func(e *models.Employee) bool { return e.EmployeeID == employeeID })
}

func (m *MemoryRepository) ListByCompany(ctx context.Context, companyID string, page models.Page) ([]*models.Employee, int64, error) {
	page = page.Normalize()
	m.mu.RLock()
	var all []*models.Employee
	for _, e := range m.store {
		if e.CompanyID == companyID {
			cp := *e
			all = append(all, &cp)
		}
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]*models.Employee{}, all[start:end]...), total, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id string, set bson.M) (*models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "name":
			e.Name = v.(string)
		case "email":
			e.Email = v.(string)
		case "designation":
			e.Designation = v.(string)
		case "status":
			e.Status = v.(string)
		case "passwordHash":
			e.PasswordHash = v.(string)
		}
	}
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	return &cp, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepository) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.store {
		if e.CompanyID == companyID {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}
