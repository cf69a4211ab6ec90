package hotels

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/google/uuid"
)

// ErrSearchExpired is returned for unknown, expired or foreign search ids.
var ErrSearchExpired = errors.New("search session expired, search again")

const (
	cachePrefix   = "b2b:hotels:search:"
	sessionPrefix = "b2b:hotels:session:"
)

// Session remembers a search so later steps can reuse its supplier session.
type Session struct {
	ID                string                 `json:"searchId"`
	CompanyID         string                 `json:"companyId"`
	Request           supplier.SearchRequest `json:"request"`
	SupplierSessionID string                 `json:"supplierSessionId"`
	CreatedAt         time.Time              `json:"createdAt"`
	ExpiresAt         time.Time              `json:"expiresAt"`
}

// HotelResult is a hotel as shown to agents. Only the marked-up price leaves the service.
type HotelResult struct {
	HotelID    string       `json:"hotelId"`
	Name       string       `json:"name"`
	Address    string       `json:"address,omitempty"`
	City       string       `json:"city,omitempty"`
	StarRating float64      `json:"starRating,omitempty"`
	Image      string       `json:"image,omitempty"`
	Price      money.Amount `json:"price"`
	Currency   string       `json:"currency"`
}

type SearchResponse struct {
	SearchID  string        `json:"searchId"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Nights    int           `json:"nights"`
	Hotels    []HotelResult `json:"hotels"`
	Cached    bool          `json:"cached"`
}

type PackageResult struct {
	PackageID  string       `json:"packageId"`
	RoomType   string       `json:"roomType"`
	BoardType  string       `json:"boardType,omitempty"`
	Refundable bool         `json:"refundable"`
	Price      money.Amount `json:"price"`
	Currency   string       `json:"currency"`
}

type PackagesResponse struct {
	SearchID string          `json:"searchId"`
	HotelID  string          `json:"hotelId"`
	Packages []PackageResult `json:"packages"`
}

type Options struct {
	Currency   string
	CacheTTL   time.Duration
	SessionTTL time.Duration
}

type Service struct {
	api     supplier.API
	pricing *markups.Service
	kv      KV
	opts    Options
	now     func() time.Time
}

func NewService(api supplier.API, pricing *markups.Service, kv KV, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	return &Service{api: api, pricing: pricing, kv: kv, opts: opts, now: time.Now}
}

func cacheKey(req supplier.SearchRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return cachePrefix + hex.EncodeToString(sum[:]), nil
}

// Search queries availability for companyID and opens a search session.
func (s *Service) Search(ctx context.Context, companyID string, in SearchInput) (*SearchResponse, error) {
	in, err := in.Normalize(s.now())
	if err != nil {
		return nil, err
	}
	req := supplier.SearchRequest{
		LocationID:  in.LocationID,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		Rooms:       in.Rooms,
		Nationality: in.Nationality,
		Currency:    s.opts.Currency,
	}
	result, cached, err := s.search(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := Session{
		ID:                uuid.NewString(),
		CompanyID:         companyID,
		Request:           req,
		SupplierSessionID: result.SessionID,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.opts.SessionTTL),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, sessionPrefix+sess.ID, b, s.opts.SessionTTL); err != nil {
		return nil, fmt.Errorf("store search session: %w", err)
	}

	ids := make([]string, len(result.Hotels))
	for i, h := range result.Hotels {
		ids[i] = h.ID
	}
	pricer, err := s.pricing.Pricer(ctx, ids)
	if err != nil {
		return nil, err
	}
	hotels := make([]HotelResult, 0, len(result.Hotels))
	for _, h := range result.Hotels {
		q := pricer.Quote(h.ID, money.FromDecimal(h.MinPrice))
		hotels = append(hotels, HotelResult{
			HotelID:    h.ID,
			Name:       h.Name,
			Address:    h.Address,
			City:       h.City,
			StarRating: h.StarRating,
			Image:      h.Image,
			Price:      q.Total,
			Currency:   s.opts.Currency,
		})
	}
	return &SearchResponse{
		SearchID:  sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Nights:    in.Nights(),
		Hotels:    hotels,
		Cached:    cached,
	}, nil
}

// search returns the raw supplier result, from cache when possible. Markups are
// applied after the cache so pricing changes take effect immediately.
func (s *Service) search(ctx context.Context, req supplier.SearchRequest) (*supplier.SearchResult, bool, error) {
	key, err := cacheKey(req)
	if err != nil {
		return nil, false, err
	}
	if s.opts.CacheTTL > 0 {
		if b, ok, err := s.kv.Get(ctx, key); err != nil {
			logger.Warnf("search cache read failed: %v", err)
		} else if ok {
			var res supplier.SearchResult
			if err := json.Unmarshal(b, &res); err == nil {
				return &res, true, nil
			}
		}
	}
	res, err := s.api.Search(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if s.opts.CacheTTL > 0 {
		if b, err := json.Marshal(res); err == nil {
			if err := s.kv.Set(ctx, key, b, s.opts.CacheTTL); err != nil {
				logger.Warnf("search cache write failed: %v", err)
			}
		}
	}
	return res, false, nil
}

// Session loads a live search session owned by companyID. An empty companyID
// (admins) skips the ownership check.
func (s *Service) Session(ctx context.Context, companyID, searchID string) (*Session, error) {
	if searchID == "" {
		return nil, ErrSearchExpired
	}
	b, ok, err := s.kv.Get(ctx, sessionPrefix+searchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSearchExpired
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, ErrSearchExpired
	}
	if s.now().After(sess.ExpiresAt) {
		return nil, ErrSearchExpired
	}
	if companyID != "" && sess.CompanyID != companyID {
		return nil, ErrSearchExpired
	}
	return &sess, nil
}

// Packages lists the rooms of a hotel from a previous search, marked up.
func (s *Service) Packages(ctx context.Context, companyID, searchID, hotelID string) (*PackagesResponse, error) {
	sess, err := s.Session(ctx, companyID, searchID)
	if err != nil {
		return nil, err
	}
	res, err := s.api.Packages(ctx, supplier.PackagesRequest{
		SessionID: sess.SupplierSessionID,
		HotelID:   hotelID,
		Search:    sess.Request,
	})
	if err != nil {
		return nil, err
	}
	pricer, err := s.pricing.Pricer(ctx, []string{hotelID})
	if err != nil {
		return nil, err
	}
	out := &PackagesResponse{SearchID: sess.ID, HotelID: hotelID, Packages: make([]PackageResult, 0, len(res.Packages))}
	for _, p := range res.Packages {
		out.Packages = append(out.Packages, PackageResult{
			PackageID:  p.ID,
			RoomType:   p.RoomType,
			BoardType:  p.BoardType,
			Refundable: p.Refundable,
			Price:      pricer.Quote(hotelID, money.FromDecimal(p.Price)).Total,
			Currency:   s.opts.Currency,
		})
	}
	return out, nil
}
