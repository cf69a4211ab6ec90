// Package bookings runs the policy, prebook, confirm and cancel flow against
// the hotel supplier and settles payments through the company wallet.
package bookings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/storage"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrUnsupportedPayment = errors.New("only wallet payments are supported")
	ErrNoCompany          = errors.New("bookings require a company account")
	ErrVoucherUnavailable = errors.New("voucher not available")
	ErrInvalidGuests      = errors.New("at least one adult guest is required")
)

const (
	maxSpecialRequests = 500
	voucherURLTTL      = 15 * time.Minute
	settleTimeout      = 10 * time.Second
)

type PolicyInput struct {
	SearchID  string `json:"searchId" binding:"required"`
	HotelID   string `json:"hotelId" binding:"required"`
	PackageID string `json:"packageId" binding:"required"`
}

// PolicyQuote is a cancellation policy with the price the agent will pay.
type PolicyQuote struct {
	PolicyID          string             `json:"policyId"`
	HotelID           string             `json:"hotelId"`
	PackageID         string             `json:"packageId"`
	Refundable        bool               `json:"refundable"`
	CancellationRules []CancellationRule `json:"cancellationRules"`
	Price             money.Amount       `json:"price"`
	Currency          string             `json:"currency"`
	ExpiresAt         string             `json:"expiresAt,omitempty"`
}

type PrebookInput struct {
	SearchID        string  `json:"searchId" binding:"required"`
	HotelID         string  `json:"hotelId" binding:"required"`
	PackageID       string  `json:"packageId" binding:"required"`
	PolicyID        string  `json:"policyId" binding:"required"`
	Guests          []Guest `json:"guests" binding:"required,min=1,dive"`
	Contact         Contact `json:"contact" binding:"required"`
	SpecialRequests string  `json:"specialRequests"`
}

// Deps are the collaborators of the booking flow. Store may be nil.
type Deps struct {
	Hotels   *hotels.Service
	Supplier supplier.API
	Pricing  *markups.Service
	Wallet   *wallet.Service
	Events   events.Publisher
	Store    storage.Store
	Currency string
}

type Service struct {
	repo Repository
	Deps
	now func() time.Time
}

func NewService(r Repository, d Deps) *Service {
	if d.Currency == "" {
		d.Currency = "INR"
	}
	return &Service{repo: r, Deps: d, now: time.Now}
}

// scope limits what p may see: employees their own bookings, companies all of
// theirs and admins everything.
func scope(p models.Principal) Filter {
	switch {
	case p.IsEmployee():
		return Filter{CompanyID: p.CompanyID, EmployeeID: p.Subject}
	case p.IsCompany():
		return Filter{CompanyID: p.CompanyID}
	}
	return Filter{}
}

func visible(p models.Principal, b *Booking) bool {
	f := scope(p)
	if f.CompanyID != "" && b.CompanyID != f.CompanyID {
		return false
	}
	return f.EmployeeID == "" || b.EmployeeID == f.EmployeeID
}

// newReference returns a human-friendly booking reference such as BK260117A1B2C3.
func newReference(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "BK" + now.UTC().Format("060102") + id[:6]
}

func convertRules(in []supplier.CancellationRule) []CancellationRule {
	out := make([]CancellationRule, 0, len(in))
	for _, r := range in {
		out = append(out, CancellationRule{From: r.From, To: r.To, Charge: money.FromDecimal(r.Charge)})
	}
	return out
}

func (s *Service) policy(ctx context.Context, p models.Principal, in PolicyInput) (*hotels.Session, *supplier.Policy, error) {
	if p.CompanyID == "" {
		return nil, nil, ErrNoCompany
	}
	sess, err := s.Hotels.Session(ctx, p.CompanyID, in.SearchID)
	if err != nil {
		return nil, nil, err
	}
	pol, err := s.Supplier.BookingPolicy(ctx, supplier.PolicyRequest{
		SessionID: sess.SupplierSessionID,
		HotelID:   in.HotelID,
		PackageID: in.PackageID,
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, pol, nil
}

// Policy fetches the cancellation policy of a package and prices it.
func (s *Service) Policy(ctx context.Context, p models.Principal, in PolicyInput) (*PolicyQuote, error) {
	_, pol, err := s.policy(ctx, p, in)
	if err != nil {
		return nil, err
	}
	q, err := s.Pricing.Apply(ctx, in.HotelID, money.FromDecimal(pol.Price))
	if err != nil {
		return nil, err
	}
	return &PolicyQuote{
		PolicyID:          pol.PolicyID,
		HotelID:           in.HotelID,
		PackageID:         in.PackageID,
		Refundable:        pol.Refundable,
		CancellationRules: convertRules(pol.CancellationRules),
		Price:             q.Total,
		Currency:          s.Currency,
		ExpiresAt:         pol.ExpiresAt,
	}, nil
}

// Prebook holds the package with the supplier and records a prebooked booking.
func (s *Service) Prebook(ctx context.Context, p models.Principal, in PrebookInput) (*Booking, error) {
	adult := false
	for _, g := range in.Guests {
		if g.Type == "adult" {
			adult = true
		}
	}
	if !adult {
		return nil, ErrInvalidGuests
	}
	sess, pol, err := s.policy(ctx, p, PolicyInput{SearchID: in.SearchID, HotelID: in.HotelID, PackageID: in.PackageID})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &Booking{
		ID:        uuid.NewString(),
		Reference: newReference(now),
		CompanyID: p.CompanyID,
		CreatedBy: p.Subject,
		Status:    StatusPrebooked,
		SearchID:  sess.ID,
		HotelID:   in.HotelID,
		PackageID: in.PackageID,
		PolicyID:  in.PolicyID,
		Stay: Stay{
			CheckIn:     sess.Request.CheckIn,
			CheckOut:    sess.Request.CheckOut,
			Rooms:       sess.Request.Rooms,
			Nationality: sess.Request.Nationality,
		},
		Currency: s.Currency,
		Contact: Contact{
			Name:  textutil.Clean(in.Contact.Name),
			Email: textutil.NormalizeEmail(in.Contact.Email),
			Phone: textutil.NormalizePhone(in.Contact.Phone),
		},
		SpecialRequests:   textutil.Clean(in.SpecialRequests),
		Refundable:        pol.Refundable,
		CancellationRules: convertRules(pol.CancellationRules),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.IsEmployee() {
		b.EmployeeID = p.Subject
	}
	b.SpecialRequests = textutil.Truncate(b.SpecialRequests, maxSpecialRequests)
	guests := make([]supplier.Guest, 0, len(in.Guests))
	for _, g := range in.Guests {
		g.Title = textutil.Clean(g.Title)
		g.FirstName = textutil.Clean(g.FirstName)
		g.LastName = textutil.Clean(g.LastName)
		b.Guests = append(b.Guests, g)
		guests = append(guests, supplier.Guest{Title: g.Title, FirstName: g.FirstName, LastName: g.LastName, Type: g.Type, Age: g.Age})
	}

	res, err := s.Supplier.Prebook(ctx, supplier.PrebookRequest{
		SessionID:       sess.SupplierSessionID,
		HotelID:         in.HotelID,
		PackageID:       in.PackageID,
		PolicyID:        in.PolicyID,
		Reference:       b.Reference,
		Guests:          guests,
		Contact:         supplier.Contact{Name: b.Contact.Name, Email: b.Contact.Email, Phone: b.Contact.Phone},
		SpecialRequests: b.SpecialRequests,
	})
	if err != nil {
		return nil, err
	}
	b.SupplierPrebookID = res.PrebookID
	if b.Price, err = s.Pricing.Apply(ctx, in.HotelID, money.FromDecimal(res.Price)); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues(StatusPrebooked).Inc()
	events.Emit(ctx, s.Events, events.TopicBookings, b.CompanyID, events.TypeBookingPrebooked, b)
	return b, nil
}

// Get returns a booking visible to p.
func (s *Service) Get(ctx context.Context, p models.Principal, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(p, b) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, p models.Principal, status string, page models.Page) ([]*Booking, int64, error) {
	f := scope(p)
	f.Status = status
	return s.repo.List(ctx, f, page)
}

// AdminList lists bookings across companies.
func (s *Service) AdminList(ctx context.Context, f Filter, page models.Page) ([]*Booking, int64, error) {
	return s.repo.List(ctx, f, page)
}

// Confirm pays for a prebooked booking from the company wallet and confirms it
// with the supplier. A supplier failure refunds the debit and fails the booking.
func (s *Service) Confirm(ctx context.Context, p models.Principal, id, method string) (*Booking, error) {
	if method != "" && method != PaymentWallet {
		return nil, ErrUnsupportedPayment
	}
	b, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPrebooked {
		return nil, ErrInvalidState
	}
	if b, err = s.repo.Transition(ctx, id, StatusPrebooked, bson.M{"status": StatusConfirming}); err != nil {
		return nil, err
	}

	mv := wallet.Movement{
		CompanyID:  b.CompanyID,
		EmployeeID: b.EmployeeID,
		Amount:     b.Price.Total,
		Reference:  b.Reference,
		Note:       "hotel booking " + b.Reference,
		CreatedBy:  p.Subject,
	}
	if _, err := s.Wallet.Debit(ctx, mv); err != nil {
		sctx, cancel := settleContext(ctx)
		defer cancel()
		if _, rerr := s.repo.Transition(sctx, id, StatusConfirming, bson.M{"status": StatusPrebooked}); rerr != nil {
			logger.Errorf("booking %s: reset after failed debit: %v", b.Reference, rerr)
		}
		return nil, err
	}

	res, err := s.Supplier.Confirm(ctx, supplier.ConfirmRequest{PrebookID: b.SupplierPrebookID, Reference: b.Reference})
	sctx, cancel := settleContext(ctx)
	defer cancel()
	if err != nil {
		return nil, s.failConfirm(sctx, b, mv, err)
	}

	now := s.now().UTC()
	b, err = s.repo.Transition(sctx, id, StatusConfirming, bson.M{
		"status":             StatusConfirmed,
		"confirmationNumber": res.ConfirmationNumber,
		"paymentMethod":      PaymentWallet,
		"confirmedAt":        now,
	})
	if err != nil {
		logger.Errorf("booking %s: confirmed by supplier as %s but not recorded: %v", mv.Reference, res.ConfirmationNumber, err)
		return nil, err
	}
	s.storeVoucher(sctx, b)
	metrics.BookingsTotal.WithLabelValues(StatusConfirmed).Inc()
	events.Emit(sctx, s.Events, events.TopicBookings, b.CompanyID, events.TypeBookingConfirmed, b)
	return b, nil
}

// settleContext returns a context for the writes that follow a wallet or
// supplier side effect. It outlives the request so a client disconnect cannot
// leave money or a booking in an intermediate state.
func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

// failConfirm refunds the debit and marks the booking failed. ctx must be a
// settle context.
func (s *Service) failConfirm(ctx context.Context, b *Booking, mv wallet.Movement, cause error) error {
	refund := mv
	refund.Note = "refund: confirmation failed for " + b.Reference
	if _, err := s.Wallet.Credit(ctx, refund); err != nil {
		logger.Errorf("booking %s: refund of %s failed: %v", b.Reference, mv.Amount, err)
	}
	failed, err := s.repo.Transition(ctx, b.ID, StatusConfirming, bson.M{
		"status":        StatusFailed,
		"failureReason": cause.Error(),
	})
	if err != nil {
		logger.Errorf("booking %s: mark failed: %v", b.Reference, err)
		failed = b
	}
	metrics.BookingsTotal.WithLabelValues(StatusFailed).Inc()
	events.Emit(ctx, s.Events, events.TopicBookings, b.CompanyID, events.TypeBookingFailed, failed)
	return fmt.Errorf("confirm booking %s: %w", b.Reference, cause)
}

func (s *Service) storeVoucher(ctx context.Context, b *Booking) {
	if s.Store == nil {
		return
	}
	html, err := RenderVoucher(b)
	if err != nil {
		logger.Errorf("booking %s: render voucher: %v", b.Reference, err)
		return
	}
	key := voucherKey(b)
	if err := s.Store.UploadFile(ctx, key, bytes.NewReader(html), int64(len(html)), "text/html; charset=utf-8"); err != nil {
		logger.Warnf("booking %s: upload voucher: %v", b.Reference, err)
		return
	}
	if err := s.repo.Update(ctx, b.ID, bson.M{"voucherKey": key}); err != nil {
		logger.Warnf("booking %s: save voucher key: %v", b.Reference, err)
		return
	}
	b.VoucherKey = key
}

// Cancel cancels a confirmed booking with the supplier and refunds the wallet.
// A supplier refund covering the full base amount returns the full total paid,
// markup included; anything less is passed through as is.
func (s *Service) Cancel(ctx context.Context, p models.Principal, id string) (*Booking, error) {
	b, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, ErrInvalidState
	}
	if b, err = s.repo.Transition(ctx, id, StatusConfirmed, bson.M{"status": StatusCancelling}); err != nil {
		return nil, err
	}
	res, err := s.Supplier.Cancel(ctx, supplier.CancelRequest{ConfirmationNumber: b.ConfirmationNumber, Reference: b.Reference})
	sctx, cancel := settleContext(ctx)
	defer cancel()
	if err != nil {
		if _, rerr := s.repo.Transition(sctx, id, StatusCancelling, bson.M{"status": StatusConfirmed}); rerr != nil {
			logger.Errorf("booking %s: reset after failed cancel: %v", b.Reference, rerr)
		}
		return nil, err
	}

	refund := RefundFor(b.Price, money.FromDecimal(res.RefundAmount))
	set := bson.M{"status": StatusCancelled, "cancelledAt": s.now().UTC(), "refundAmount": refund}
	var refundErr error
	if refund.IsPositive() {
		_, refundErr = s.Wallet.Credit(sctx, wallet.Movement{
			CompanyID:  b.CompanyID,
			EmployeeID: b.EmployeeID,
			Amount:     refund,
			Reference:  b.Reference,
			Note:       "refund: cancellation of " + b.Reference,
			CreatedBy:  p.Subject,
		})
		if refundErr != nil {
			logger.Errorf("booking %s: cancellation refund of %s failed: %v", b.Reference, refund, refundErr)
			set["refundAmount"] = money.Amount(0)
			set["failureReason"] = "refund failed: " + refundErr.Error()
		}
	}
	if b, err = s.repo.Transition(sctx, id, StatusCancelling, set); err != nil {
		return nil, err
	}
	metrics.BookingsTotal.WithLabelValues(StatusCancelled).Inc()
	events.Emit(sctx, s.Events, events.TopicBookings, b.CompanyID, events.TypeBookingCancelled, b)
	if refundErr != nil {
		return b, fmt.Errorf("refund booking %s: %w", b.Reference, refundErr)
	}
	return b, nil
}

// RefundFor computes the wallet refund for a cancellation.
func RefundFor(price markups.Quote, supplierRefund money.Amount) money.Amount {
	if supplierRefund >= price.Base {
		return price.Total
	}
	if supplierRefund < 0 {
		return 0
	}
	return supplierRefund
}

// VoucherURL returns a short-lived download link for the booking voucher.
func (s *Service) VoucherURL(ctx context.Context, p models.Principal, id string) (string, error) {
	b, err := s.Get(ctx, p, id)
	if err != nil {
		return "", err
	}
	if b.VoucherKey == "" || s.Store == nil {
		return "", ErrVoucherUnavailable
	}
	return s.Store.GetPresignedURL(ctx, b.VoucherKey, voucherURLTTL)
}
