package wallet

import (
	"context"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/events"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/delonixservices/b2b-agent-sub001/pkg/metrics"
	"github.com/google/uuid"
)

// ledgerTimeout bounds the transaction write that follows an applied balance
// update. It runs detached from the caller so a cancelled request cannot skip it.
const ledgerTimeout = 5 * time.Second

// Movement describes a credit or debit request.
type Movement struct {
	CompanyID  string
	EmployeeID string
	Amount     money.Amount
	Reference  string
	Note       string
	CreatedBy  string
}

type Service struct {
	repo     Repository
	events   events.Publisher
	currency string
}

func NewService(r Repository, pub events.Publisher, currency string) *Service {
	if currency == "" {
		currency = "INR"
	}
	return &Service{repo: r, events: pub, currency: currency}
}

// Open creates the wallet of a new company with a zero balance.
func (s *Service) Open(ctx context.Context, companyID string) (*Wallet, error) {
	return s.repo.Open(ctx, companyID, s.currency)
}

func (s *Service) Balance(ctx context.Context, companyID string) (*Wallet, error) {
	return s.repo.Get(ctx, companyID)
}

func (s *Service) Transactions(ctx context.Context, companyID string, page models.Page) ([]*Transaction, int64, error) {
	return s.repo.ListTransactions(ctx, companyID, page)
}

func (s *Service) Credit(ctx context.Context, mv Movement) (*Transaction, error) {
	return s.move(ctx, TypeCredit, mv)
}

// Debit fails with ErrInsufficientFunds when the balance does not cover the amount.
func (s *Service) Debit(ctx context.Context, mv Movement) (*Transaction, error) {
	return s.move(ctx, TypeDebit, mv)
}

// Close deletes an empty wallet. It fails with ErrNonZeroBalance otherwise.
func (s *Service) Close(ctx context.Context, companyID string) error {
	return s.repo.DeleteIfEmpty(ctx, companyID)
}

func (s *Service) move(ctx context.Context, kind string, mv Movement) (*Transaction, error) {
	if !mv.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var (
		w   *Wallet
		err error
	)
	if kind == TypeCredit {
		w, err = s.repo.Credit(ctx, mv.CompanyID, mv.Amount)
	} else {
		w, err = s.repo.Debit(ctx, mv.CompanyID, mv.Amount)
	}
	if err != nil {
		metrics.WalletOperations.WithLabelValues(kind, "rejected").Inc()
		return nil, err
	}
	metrics.WalletOperations.WithLabelValues(kind, "ok").Inc()

	tx := &Transaction{
		ID:           uuid.NewString(),
		CompanyID:    mv.CompanyID,
		EmployeeID:   mv.EmployeeID,
		Type:         kind,
		Amount:       mv.Amount,
		BalanceAfter: w.Balance,
		Reference:    mv.Reference,
		Note:         textutil.Clean(mv.Note),
		CreatedBy:    mv.CreatedBy,
		CreatedAt:    time.Now().UTC(),
	}
	// The balance has moved at this point. A ledger failure is reported to
	// operators but the movement itself succeeded and must not be retried.
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerTimeout)
	defer cancel()
	if err := s.repo.AppendTransaction(lctx, tx); err != nil {
		metrics.WalletOperations.WithLabelValues(kind, "ledger_failed").Inc()
		logger.Errorf("wallet %s: %s %s of %s applied but ledger write failed: %v", mv.CompanyID, kind, tx.ID, mv.Amount, err)
	}

	eventType := events.TypeWalletCredited
	if kind == TypeDebit {
		eventType = events.TypeWalletDebited
	}
	events.Emit(ctx, s.events, events.TopicWallet, mv.CompanyID, eventType, tx)
	return tx, nil
}
