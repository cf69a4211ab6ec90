package admins

import (
	"context"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository used by tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*models.Admin{}}
}

func (m *MemoryRepository) Create(ctx context.Context, a *models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.store {
		if o.Username == a.Username {
			return ErrConflict
		}
	}
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpsertBySub(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, o := range m.store {
		if o.Sub == a.Sub {
			o.Email, o.Name, o.UpdatedAt = a.Email, a.Name, now
			cp := *o
			return &cp, nil
		}
	}
	cp := *a
	cp.ID = uuid.NewString()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.store[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MemoryRepository) find(match func(*models.Admin) bool) (*models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetBySub(ctx context.Context, sub string) (*models.Admin, error) {
	return m.find(func(a *models.Admin) bool { return a.Sub == sub })
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return m.find(func(a *models.Admin) bool { return a.ID == id })
}

func (m *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return m.find(func(a *models.Admin) bool { return a.Username == username })
}

func (m *MemoryRepository) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.store)), nil
}
