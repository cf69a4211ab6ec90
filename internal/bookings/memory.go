package bookings

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
	mu    sync.Mutex
	store map[string]*Booking
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*Booking{}}
}

func (m *MemoryRepository) Create(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.store {
		if ex.Reference == b.Reference {
			return ErrConflict
		}
	}
	cp := *b
	m.store[b.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// applySet round-trips b through BSON so $set keys use the stored field names.
func applySet(b *Booking, set bson.M) (*Booking, error) {
	raw, err := bson.Marshal(b)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	doc["updatedAt"] = time.Now().UTC()
	if raw, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	var out Booking
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryRepository) Transition(ctx context.Context, id, from string, set bson.M) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, ErrInvalidState
	}
	next, err := applySet(b, set)
	if err != nil {
		return nil, err
	}
	m.store[id] = next
	cp := *next
	return &cp, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id string, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	next, err := applySet(b, set)
	if err != nil {
		return err
	}
	m.store[id] = next
	return nil
}

func (m *MemoryRepository) List(ctx context.Context, f Filter, page models.Page) ([]*Booking, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Booking
	for _, b := range m.store {
		if f.CompanyID != "" && b.CompanyID != f.CompanyID {
			continue
		}
		if f.EmployeeID != "" && b.EmployeeID != f.EmployeeID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		cp := *b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	p := page.Normalize()
	start := int(p.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
