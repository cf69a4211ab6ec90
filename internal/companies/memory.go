package companies

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
	store map[string]*models.Company
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*models.Company{}}
}

func (m *MemoryRepository) Create(ctx context.Context, c *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.Phone == c.Phone || o.Email == c.Email || (c.CompanyNumber != "" && o.CompanyNumber == c.CompanyNumber) {
			return ErrConflict
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) find(match func(*models.Company) bool) (*models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return m.find(func(c *models.Company) bool { return c.ID == id })
}

func (m *MemoryRepository) GetByPhone(ctx context.Context, phone string) (*models.Company, error) {
	return m.find(func(c *models.Company) bool { return c.Phone == phone })
}

func (m *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	return m.find(func(c *models.Company) bool { return c.Email == email })
}

func (m *MemoryRepository) List(ctx context.Context, status string, page models.Page) ([]*models.Company, int64, error) {
	m.mu.RLock()
	all := []*models.Company{}
	for _, c := range m.store {
		if status == "" || c.Status == status {
			cp := *c
			all = append(all, &cp)
		}
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	p := page.Normalize()
	start := int(p.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *MemoryRepository) Update(ctx context.Context, id string, set bson.M) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "name":
			c.Name = v.(string)
		case "contactName":
			c.ContactName = v.(string)
		case "email":
			c.Email = v.(string)
		case "address":
			c.Address = v.(string)
		case "gstNumber":
			c.GSTNumber = v.(string)
		case "status":
			c.Status = v.(string)
		case "phoneVerified":
			c.PhoneVerified = v.(bool)
		case "passwordHash":
			c.PasswordHash = v.(string)
		}
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
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
