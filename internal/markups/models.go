package markups

import (
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/money"
)

// Markup types.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Rule is a markup definition. Value is two-decimal fixed point: a percentage
// for TypePercentage ("12.50" is 12.5%) and rupees for TypeFixed.
type Rule struct {
	Type  string       `bson:"type" json:"type" binding:"required,oneof=percentage fixed"`
	Value money.Amount `bson:"value" json:"value"`
}

// Markup is the per-hotel rule. At most one exists per hotel.
type Markup struct {
	ID        string `bson:"_id" json:"id"`
	HotelID   string `bson:"hotelId" json:"hotelId"`
	Rule      `bson:",inline"`
	UpdatedBy string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ConfigID is the _id of the single pricing config document.
const ConfigID = "default"

// PricingConfig holds portal-wide pricing settings.
type PricingConfig struct {
	ID            string    `bson:"_id" json:"-"`
	DefaultMarkup Rule      `bson:"defaultMarkup" json:"defaultMarkup"`
	Currency      string    `bson:"currency" json:"currency"`
	UpdatedBy     string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Quote sources.
const (
	SourceHotel   = "hotel"
	SourceDefault = "default"
)

// Quote is a priced amount.
type Quote struct {
	Base   money.Amount `bson:"base" json:"base"`
	Markup money.Amount `bson:"markup" json:"markup"`
	Total  money.Amount `bson:"total" json:"total"`
	Source string       `bson:"source,omitempty" json:"source,omitempty"`
}
