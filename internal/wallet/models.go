package wallet

import (
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/money"
)

// Wallet is the prepaid balance of a company. Its _id is the company id.
type Wallet struct {
	CompanyID string       `bson:"_id" json:"companyId"`
	Balance   money.Amount `bson:"balance" json:"balance"`
	Currency  string       `bson:"currency" json:"currency"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Transaction types.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// Transaction is one ledger line. BalanceAfter is the balance produced by the
// atomic update that the line records.
type Transaction struct {
	ID           string       `bson:"_id" json:"id"`
	CompanyID    string       `bson:"companyId" json:"companyId"`
	EmployeeID   string       `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Type         string       `bson:"type" json:"type"`
	Amount       money.Amount `bson:"amount" json:"amount"`
	BalanceAfter money.Amount `bson:"balanceAfter" json:"balanceAfter"`
	Reference    string       `bson:"reference,omitempty" json:"reference,omitempty"`
	Note         string       `bson:"note,omitempty" json:"note,omitempty"`
	CreatedBy    string       `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
}
