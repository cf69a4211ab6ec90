package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
)

// MemoryRepository is an in-process Repository used by tests. A single mutex
// makes each operation atomic.
type MemoryRepository struct {
	mu      sync.Mutex
	wallets map[string]*Wallet
	txs     []*Transaction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{wallets: map[string]*Wallet{}}
}

func (m *MemoryRepository) Open(ctx context.Context, companyID, currency string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[companyID]
	if !ok {
		now := time.Now().UTC()
		w = &Wallet{CompanyID: companyID, Currency: currency, CreatedAt: now, UpdatedAt: now}
		m.wallets[companyID] = w
	}
	cp := *w
	return &cp, nil
}

func (m *MemoryRepository) Get(ctx context.Context, companyID string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[companyID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *MemoryRepository) Credit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	w, ok := m.wallets[companyID]
	if !ok {
		w = &Wallet{CompanyID: companyID, Currency: "INR", CreatedAt: now}
		m.wallets[companyID] = w
	}
	w.Balance += amount
	w.UpdatedAt = now
	cp := *w
	return &cp, nil
}

func (m *MemoryRepository) Debit(ctx context.Context, companyID string, amount money.Amount) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[companyID]
	if !ok {
		return nil, ErrNotFound
	}
	if w.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	w.Balance -= amount
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

func (m *MemoryRepository) DeleteIfEmpty(ctx context.Context, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[companyID]
	if !ok {
		return nil
	}
	if w.Balance != 0 {
		return ErrNonZeroBalance
	}
	delete(m.wallets, companyID)
	return nil
}

func (m *MemoryRepository) AppendTransaction(ctx context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.txs = append(m.txs, &cp)
	return nil
}

func (m *MemoryRepository) ListTransactions(ctx context.Context, companyID string, page models.Page) ([]*Transaction, int64, error) {
	page = page.Normalize()
	m.mu.Lock()
	var all []*Transaction
	for i := len(m.txs) - 1; i >= 0; i-- {
		if m.txs[i].CompanyID == companyID {
			cp := *m.txs[i]
			all = append(all, &cp)
		}
	}
	m.mu.Unlock()
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]*Transaction{}, all[start:end]...), int64(len(all)), nil
}
