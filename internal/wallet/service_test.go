package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rupees(n int64) money.Amount { return money.Amount(n * 100) }

func newService() (*Service, *events.MemoryPublisher) {
	pub := &events.MemoryPublisher{}
	return NewService(NewMemoryRepository(), pub, "INR"), pub
}

func TestCreditDebitLedger(t *testing.T) {
	svc, pub := newService()
	ctx := context.Background()

	w, err := svc.Open(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, money.Amount(0), w.Balance)
	require.Equal(t, "INR", w.Currency)

	tx, err := svc.Credit(ctx, Movement{CompanyID: "c1", Amount: rupees(1000), Note: "top-up", CreatedBy: "admin-1"})
	require.NoError(t, err)
	require.Equal(t, rupees(1000), tx.BalanceAfter)

	tx, err = svc.Debit(ctx, Movement{CompanyID: "c1", EmployeeID: "e1", Amount: rupees(400), Reference: "BK1"})
	require.NoError(t, err)
	require.Equal(t, rupees(600), tx.BalanceAfter)

	_, err = svc.Debit(ctx, Movement{CompanyID: "c1", Amount: rupees(601)})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	w, err = svc.Balance(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, rupees(600), w.Balance)

	txs, total, err := svc.Transactions(ctx, "c1", models.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Equal(t, TypeDebit, txs[0].Type)
	require.Equal(t, "BK1", txs[0].Reference)

	require.Equal(t, []string{events.TypeWalletCredited, events.TypeWalletDebited}, pub.Types(events.TopicWallet))
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Credit(ctx, Movement{CompanyID: "c1", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Debit(ctx, Movement{CompanyID: "c1", Amount: -5})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebitMissingWallet(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Debit(context.Background(), Movement{CompanyID: "ghost", Amount: rupees(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Open(ctx, "c1")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, Movement{CompanyID: "c1", Amount: rupees(500)})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit(ctx, Movement{CompanyID: "c1", Amount: rupees(10)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
				refused++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 50, ok)
	require.Equal(t, 50, refused)
	w, err := svc.Balance(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, money.Amount(0), w.Balance)
}

func TestClose(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Credit(ctx, Movement{CompanyID: "c1", Amount: rupees(5)})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Close(ctx, "c1"), ErrNonZeroBalance)

	_, err = svc.Debit(ctx, Movement{CompanyID: "c1", Amount: rupees(5)})
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, "c1"))
	_, err = svc.Balance(ctx, "c1")
	require.ErrorIs(t, err, ErrNotFound)
}

// brokenLedger applies balance updates but cannot record transactions.
type brokenLedger struct {
	*MemoryRepository
	ctxErr error
}

func (b *brokenLedger) AppendTransaction(ctx context.Context, tx *Transaction) error {
	b.ctxErr = ctx.Err()
	return errors.New("ledger down")
}

func TestLedgerFailureStillReportsAppliedMovement(t *testing.T) {
	repo := &brokenLedger{MemoryRepository: NewMemoryRepository()}
	pub := &events.MemoryPublisher{}
	svc := NewService(repo, pub, "INR")
	ctx := context.Background()
	_, err := svc.Open(ctx, "c1")
	require.NoError(t, err)
	before := testutil.ToFloat64(metrics.WalletOperations.WithLabelValues(TypeDebit, "ledger_failed"))

	_, err = svc.Credit(ctx, Movement{CompanyID: "c1", Amount: rupees(50)})
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	tx, err := svc.Debit(cctx, Movement{CompanyID: "c1", Amount: rupees(20), Reference: "BK1"})
	require.NoError(t, err)
	require.Equal(t, rupees(30), tx.BalanceAfter)
	require.NoError(t, repo.ctxErr)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.WalletOperations.WithLabelValues(TypeDebit, "ledger_failed")))
	require.Equal(t, []string{events.TypeWalletCredited, events.TypeWalletDebited}, pub.Types(events.TopicWallet))

	w, err := svc.Balance(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, rupees(30), w.Balance)
}
