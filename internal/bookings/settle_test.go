package bookings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// ctxWallet fails balance updates on a done context, like the Mongo driver.
type ctxWallet struct {
	*wallet.MemoryRepository
	ledgerErr error
}

func (w *ctxWallet) Credit(ctx context.Context, companyID string, amount money.Amount) (*wallet.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.MemoryRepository.Credit(ctx, companyID, amount)
}

func (w *ctxWallet) Debit(ctx context.Context, companyID string, amount money.Amount) (*wallet.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.MemoryRepository.Debit(ctx, companyID, amount)
}

func (w *ctxWallet) AppendTransaction(ctx context.Context, tx *wallet.Transaction) error {
	if w.ledgerErr != nil {
		return w.ledgerErr
	}
	return w.MemoryRepository.AppendTransaction(ctx, tx)
}

// ctxRepo fails booking writes on a done context.
type ctxRepo struct {
	Repository
}

func (r ctxRepo) Transition(ctx context.Context, id, from string, set bson.M) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Repository.Transition(ctx, id, from, set)
}

func (r ctxRepo) Update(ctx context.Context, id string, set bson.M) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Repository.Update(ctx, id, set)
}

// hangup cancels the caller's context while the supplier call is in flight.
type hangup struct {
	*supplier.Fake
	cancel context.CancelFunc
	fail   bool
}

func (h *hangup) Confirm(ctx context.Context, req supplier.ConfirmRequest) (*supplier.ConfirmResult, error) {
	h.cancel()
	if h.fail {
		return nil, ctx.Err()
	}
	return h.Fake.Confirm(ctx, req)
}

func (h *hangup) Cancel(ctx context.Context, req supplier.CancelRequest) (*supplier.CancelResult, error) {
	h.cancel()
	if h.fail {
		return nil, ctx.Err()
	}
	return h.Fake.Cancel(ctx, req)
}

func (f *fixture) strictStores(t *testing.T) *ctxWallet {
	t.Helper()
	repo := &ctxWallet{MemoryRepository: wallet.NewMemoryRepository()}
	w := wallet.NewService(repo, f.pub, "INR")
	_, err := w.Open(context.Background(), "c1")
	require.NoError(t, err)
	f.wallet = w
	f.svc.Wallet = w
	f.svc.repo = ctxRepo{Repository: f.svc.repo}
	return repo
}

func TestConfirmAfterHangupRefundsAndFails(t *testing.T) {
	f := newFixture(t)
	f.strictStores(t)
	f.fund(t, 5000)
	b := f.prebook(t, company)

	ctx, cancel := context.WithCancel(context.Background())
	f.svc.Supplier = &hangup{Fake: f.fake, cancel: cancel, fail: true}

	_, err := f.svc.Confirm(ctx, company, b.ID, PaymentWallet)
	require.ErrorIs(t, err, context.Canceled)

	got, err := f.svc.Get(context.Background(), company, b.ID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, money.Amount(500000), f.balance(t))
}

func TestConfirmRecordedWhenCallerLeavesAfterSupplier(t *testing.T) {
	f := newFixture(t)
	f.strictStores(t)
	f.fund(t, 5000)
	b := f.prebook(t, company)

	ctx, cancel := context.WithCancel(context.Background())
	f.svc.Supplier = &hangup{Fake: f.fake, cancel: cancel}

	got, err := f.svc.Confirm(ctx, company, b.ID, PaymentWallet)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)
	require.NotEmpty(t, got.VoucherKey)
	require.Equal(t, money.Amount(390000), f.balance(t))
}

func TestCancelAfterHangup(t *testing.T) {
	f := newFixture(t)
	f.strictStores(t)
	f.fund(t, 5000)
	b := f.prebook(t, company)
	_, err := f.svc.Confirm(context.Background(), company, b.ID, PaymentWallet)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.svc.Supplier = &hangup{Fake: f.fake, cancel: cancel, fail: true}
	_, err = f.svc.Cancel(ctx, company, b.ID)
	require.ErrorIs(t, err, context.Canceled)
	got, err := f.svc.Get(context.Background(), company, b.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)

	refund := decimal.NewFromInt(1000)
	f.fake.Refund = &refund
	ctx, cancel = context.WithCancel(context.Background())
	f.svc.Supplier = &hangup{Fake: f.fake, cancel: cancel}
	got, err = f.svc.Cancel(ctx, company, b.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
	require.Equal(t, money.Amount(500000), f.balance(t))
}

func TestLedgerOutageDoesNotChargeTwice(t *testing.T) {
	f := newFixture(t)
	repo := f.strictStores(t)
	f.fund(t, 5000)
	b := f.prebook(t, company)
	repo.ledgerErr = errors.New("ledger down")

	got, err := f.svc.Confirm(context.Background(), company, b.ID, PaymentWallet)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)
	require.Equal(t, money.Amount(390000), f.balance(t))

	_, err = f.svc.Confirm(context.Background(), company, b.ID, PaymentWallet)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, money.Amount(390000), f.balance(t))

	txs, _, err := f.wallet.Transactions(context.Background(), "c1", models.Page{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestSpecialRequestsTruncatedOnRuneBoundary(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.Prebook(context.Background(), company, PrebookInput{
		SearchID:        f.search(t),
		HotelID:         "H1",
		PackageID:       "P1",
		PolicyID:        "POL-P1",
		Guests:          []Guest{{Title: "Mr", FirstName: "Ravi", LastName: "Kumar", Type: "adult"}},
		Contact:         Contact{Name: "Ravi", Email: "ravi@example.com", Phone: "+919876543210"},
		SpecialRequests: "a" + strings.Repeat("é", 300),
	})
	require.NoError(t, err)
	require.True(t, utf8.ValidString(b.SpecialRequests))
	require.LessOrEqual(t, len(b.SpecialRequests), maxSpecialRequests)
	require.Equal(t, 250, utf8.RuneCountInString(b.SpecialRequests))
}
