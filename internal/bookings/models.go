package bookings

import (
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/supplier"
)

// Booking states. Confirming and cancelling are held only while the supplier
// call of the transition is in flight.
const (
	StatusPrebooked  = "prebooked"
	StatusConfirming = "confirming"
	StatusConfirmed  = "confirmed"
	StatusFailed     = "failed"
	StatusCancelling = "cancelling"
	StatusCancelled  = "cancelled"
)

const PaymentWallet = "wallet"

type Guest struct {
	Title     string `bson:"title" json:"title" binding:"required"`
	FirstName string `bson:"firstName" json:"firstName" binding:"required"`
	LastName  string `bson:"lastName" json:"lastName" binding:"required"`
	Type      string `bson:"type" json:"type" binding:"required,oneof=adult child"`
	Age       int    `bson:"age,omitempty" json:"age,omitempty" binding:"omitempty,min=0,max=120"`
}

type Contact struct {
	Name  string `bson:"name" json:"name" binding:"required"`
	Email string `bson:"email" json:"email" binding:"required,email"`
	Phone string `bson:"phone" json:"phone" binding:"required,phone"`
}

type CancellationRule struct {
	From   string       `bson:"from" json:"from"`
	To     string       `bson:"to" json:"to"`
	Charge money.Amount `bson:"charge" json:"charge"`
}

// Stay is the part of the search a booking was made from.
type Stay struct {
	CheckIn     string          `bson:"checkIn" json:"checkIn"`
	CheckOut    string          `bson:"checkOut" json:"checkOut"`
	Rooms       []supplier.Room `bson:"rooms" json:"rooms"`
	Nationality string          `bson:"nationality" json:"nationality"`
}

type Booking struct {
	ID         string `bson:"_id" json:"id"`
	Reference  string `bson:"reference" json:"reference"`
	CompanyID  string `bson:"companyId" json:"companyId"`
	EmployeeID string `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	CreatedBy  string `bson:"createdBy" json:"createdBy"`
	Status     string `bson:"status" json:"status"`

	SearchID  string `bson:"searchId" json:"searchId"`
	HotelID   string `bson:"hotelId" json:"hotelId"`
	PackageID string `bson:"packageId" json:"packageId"`
	PolicyID  string `bson:"policyId" json:"policyId"`
	Stay      Stay   `bson:"stay" json:"stay"`

	Price    markups.Quote `bson:"price" json:"price"`
	Currency string        `bson:"currency" json:"currency"`

	Guests            []Guest            `bson:"guests" json:"guests"`
	Contact           Contact            `bson:"contact" json:"contact"`
	SpecialRequests   string             `bson:"specialRequests,omitempty" json:"specialRequests,omitempty"`
	Refundable        bool               `bson:"refundable" json:"refundable"`
	CancellationRules []CancellationRule `bson:"cancellationRules,omitempty" json:"cancellationRules,omitempty"`

	SupplierPrebookID  string       `bson:"supplierPrebookId" json:"supplierPrebookId"`
	ConfirmationNumber string       `bson:"confirmationNumber,omitempty" json:"confirmationNumber,omitempty"`
	PaymentMethod      string       `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	RefundAmount       money.Amount `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	FailureReason      string       `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	VoucherKey         string       `bson:"voucherKey,omitempty" json:"-"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// Filter narrows booking lists. Empty fields match everything.
type Filter struct {
	CompanyID  string
	EmployeeID string
	Status     string
}
