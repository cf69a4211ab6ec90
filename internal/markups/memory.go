package markups

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository used by tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byHotel map[string]*Markup
	config  *PricingConfig
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHotel: map[string]*Markup{}}
}

func (m *MemoryRepository) Upsert(ctx context.Context, mk *Markup) (*Markup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := m.byHotel[mk.HotelID]
	if !ok {
		cur = &Markup{ID: uuid.NewString(), HotelID: mk.HotelID, CreatedAt: now}
		m.byHotel[mk.HotelID] = cur
	}
	cur.Rule = mk.Rule
	cur.UpdatedBy = mk.UpdatedBy
	cur.UpdatedAt = now
	cp := *cur
	return &cp, nil
}

func (m *MemoryRepository) Get(ctx context.Context, hotelID string) (*Markup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mk, ok := m.byHotel[hotelID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *mk
	return &cp, nil
}

func (m *MemoryRepository) ListByHotels(ctx context.Context, hotelIDs []string) ([]*Markup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Markup{}
	for _, id := range hotelIDs {
		if mk, ok := m.byHotel[id]; ok {
			cp := *mk
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) List(ctx context.Context, page models.Page) ([]*Markup, int64, error) {
	page = page.Normalize()
	m.mu.RLock()
	all := make([]*Markup, 0, len(m.byHotel))
	for _, mk := range m.byHotel {
		cp := *mk
		all = append(all, &cp)
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].HotelID < all[j].HotelID })
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, hotelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHotel[hotelID]; !ok {
		return ErrNotFound
	}
	delete(m.byHotel, hotelID)
	return nil
}

func (m *MemoryRepository) GetConfig(ctx context.Context) (*PricingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return nil, nil
	}
	cp := *m.config
	return &cp, nil
}

func (m *MemoryRepository) SaveConfig(ctx context.Context, cfg *PricingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	cp.ID = ConfigID
	m.config = &cp
	return nil
}
