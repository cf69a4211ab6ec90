package supplier

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Fake is an in-process API with canned inventory. Tests set the Err fields to
// simulate supplier failures.
type Fake struct {
	mu sync.Mutex

	Hotels     []Hotel
	Inventory  map[string][]Package
	Refund     *decimal.Decimal
	SearchErr  error
	PrebookErr error
	ConfirmErr error
	CancelErr  error

	Calls map[string]int
}

// NewFake returns a supplier with two hotels and one package each.
func NewFake() *Fake {
	return &Fake{
		Hotels: []Hotel{
			{ID: "H1", Name: "Sea View", City: "Goa", MinPrice: decimal.NewFromInt(1000), Currency: "INR"},
			{ID: "H2", Name: "Hill Top", City: "Shimla", MinPrice: decimal.NewFromInt(2000), Currency: "INR"},
		},
		Inventory: map[string][]Package{
			"H1": {{ID: "P1", RoomType: "Deluxe", BoardType: "BB", Refundable: true, Price: decimal.NewFromInt(1000)}},
			"H2": {{ID: "P2", RoomType: "Suite", Price: decimal.NewFromInt(2000)}},
		},
		Calls: map[string]int{},
	}
}

func (f *Fake) called(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[op]++
}

// CallCount returns how often op was invoked.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *Fake) packageByID(hotelID, packageID string) (Package, bool) {
	for _, p := range f.Inventory[hotelID] {
		if p.ID == packageID {
			return p, true
		}
	}
	return Package{}, false
}

func (f *Fake) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	f.called("search")
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	return &SearchResult{SessionID: "sess-" + req.LocationID, Hotels: append([]Hotel(nil), f.Hotels...)}, nil
}

func (f *Fake) Packages(ctx context.Context, req PackagesRequest) (*PackagesResult, error) {
	f.called("packages")
	return &PackagesResult{HotelID: req.HotelID, Packages: append([]Package(nil), f.Inventory[req.HotelID]...)}, nil
}

func (f *Fake) BookingPolicy(ctx context.Context, req PolicyRequest) (*Policy, error) {
	f.called("policy")
	p, ok := f.packageByID(req.HotelID, req.PackageID)
	if !ok {
		return nil, &Error{Op: "policy", StatusCode: 404, Message: "package not found"}
	}
	return &Policy{
		PolicyID:   "POL-" + p.ID,
		Refundable: p.Refundable,
		Price:      p.Price,
		CancellationRules: []CancellationRule{
			{From: "2030-01-01", To: "2030-01-10", Charge: decimal.Zero},
		},
	}, nil
}

func (f *Fake) Prebook(ctx context.Context, req PrebookRequest) (*PrebookResult, error) {
	f.called("prebook")
	if f.PrebookErr != nil {
		return nil, f.PrebookErr
	}
	p, ok := f.packageByID(req.HotelID, req.PackageID)
	if !ok {
		return nil, &Error{Op: "prebook", StatusCode: 404, Message: "package not found"}
	}
	return &PrebookResult{PrebookID: "PB-" + req.Reference, Price: p.Price}, nil
}

func (f *Fake) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	f.called("confirm")
	if f.ConfirmErr != nil {
		return nil, f.ConfirmErr
	}
	return &ConfirmResult{ConfirmationNumber: "CNF-" + req.Reference, Status: "confirmed"}, nil
}

func (f *Fake) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	f.called("cancel")
	if f.CancelErr != nil {
		return nil, f.CancelErr
	}
	res := &CancelResult{Status: "cancelled"}
	if f.Refund != nil {
		res.RefundAmount = *f.Refund
	}
	return res, nil
}
