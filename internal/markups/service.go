package markups

import (
	"context"
	"strings"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
)

// Service manages markups and prices amounts with them.
type Service struct {
	repo     Repository
	currency string
}

func NewService(r Repository, currency string) *Service {
	if currency == "" {
		currency = "INR"
	}
	return &Service{repo: r, currency: currency}
}

// HotelID is the stored form of a supplier hotel id.
func HotelID(id string) string { return strings.TrimSpace(id) }

// Upsert sets the markup of a hotel.
func (s *Service) Upsert(ctx context.Context, hotelID string, rule Rule, by string) (*Markup, error) {
	hotelID = HotelID(hotelID)
	if hotelID == "" {
		return nil, ErrHotelRequired
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, &Markup{HotelID: hotelID, Rule: rule, UpdatedBy: by})
}

func (s *Service) Get(ctx context.Context, hotelID string) (*Markup, error) {
	return s.repo.Get(ctx, HotelID(hotelID))
}

func (s *Service) List(ctx context.Context, page models.Page) ([]*Markup, int64, error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Delete(ctx context.Context, hotelID string) error {
	return s.repo.Delete(ctx, HotelID(hotelID))
}

// Config returns the stored pricing config, or a zero markup in the portal currency.
func (s *Service) Config(ctx context.Context) (*PricingConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &PricingConfig{ID: ConfigID, DefaultMarkup: Rule{Type: TypePercentage}, Currency: s.currency}
	}
	return cfg, nil
}

func (s *Service) UpdateConfig(ctx context.Context, rule Rule, currency, by string) (*PricingConfig, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = s.currency
	}
	cfg := &PricingConfig{
		ID:            ConfigID,
		DefaultMarkup: rule,
		Currency:      strings.ToUpper(currency),
		UpdatedBy:     by,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.repo.SaveConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Pricer quotes prices for a fixed set of hotels without further lookups.
type Pricer struct {
	byHotel  map[string]Rule
	fallback Rule
}

// Quote prices base for hotelID, falling back to the default markup.
func (p *Pricer) Quote(hotelID string, base money.Amount) Quote {
	if r, ok := p.byHotel[HotelID(hotelID)]; ok {
		q := r.Apply(base)
		q.Source = SourceHotel
		return q
	}
	q := p.fallback.Apply(base)
	q.Source = SourceDefault
	return q
}

// Pricer loads the markups of hotelIDs and the default config in two queries.
func (s *Service) Pricer(ctx context.Context, hotelIDs []string) (*Pricer, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(hotelIDs))
	for i, id := range hotelIDs {
		ids[i] = HotelID(id)
	}
	list, err := s.repo.ListByHotels(ctx, ids)
	if err != nil {
		return nil, err
	}
	p := &Pricer{byHotel: make(map[string]Rule, len(list)), fallback: cfg.DefaultMarkup}
	for _, m := range list {
		p.byHotel[m.HotelID] = m.Rule
	}
	return p, nil
}

// Apply prices a single amount for hotelID.
func (s *Service) Apply(ctx context.Context, hotelID string, base money.Amount) (Quote, error) {
	p, err := s.Pricer(ctx, []string{hotelID})
	if err != nil {
		return Quote{}, err
	}
	return p.Quote(hotelID, base), nil
}

// Price is a base amount for a hotel.
type Price struct {
	HotelID string
	Base    money.Amount
}

// ApplyMany prices every entry using one markup lookup.
func (s *Service) ApplyMany(ctx context.Context, prices []Price) ([]Quote, error) {
	ids := make([]string, 0, len(prices))
	seen := map[string]bool{}
	for _, p := range prices {
		if !seen[p.HotelID] {
			seen[p.HotelID] = true
			ids = append(ids, p.HotelID)
		}
	}
	pricer, err := s.Pricer(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Quote, len(prices))
	for i, p := range prices {
		out[i] = pricer.Quote(p.HotelID, p.Base)
	}
	return out, nil
}
