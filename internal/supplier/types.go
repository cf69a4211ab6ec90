package supplier

import "github.com/shopspring/decimal"

// Room is one requested room.
type Room struct {
	Adults    int   `json:"adults"`
	Children  int   `json:"children"`
	ChildAges []int `json:"childAges,omitempty"`
}

type SearchRequest struct {
	LocationID  string `json:"locationId"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Rooms       []Room `json:"rooms"`
	Nationality string `json:"nationality"`
	Currency    string `json:"currency"`
}

type Hotel struct {
	ID         string          `json:"hotelId"`
	Name       string          `json:"name"`
	Address    string          `json:"address,omitempty"`
	City       string          `json:"city,omitempty"`
	StarRating float64         `json:"starRating,omitempty"`
	Image      string          `json:"image,omitempty"`
	MinPrice   decimal.Decimal `json:"minPrice"`
	Currency   string          `json:"currency,omitempty"`
}

type SearchResult struct {
	SessionID string  `json:"sessionId"`
	Hotels    []Hotel `json:"hotels"`
}

type PackagesRequest struct {
	SessionID string        `json:"sessionId"`
	HotelID   string        `json:"hotelId"`
	Search    SearchRequest `json:"search"`
}

type Package struct {
	ID         string          `json:"packageId"`
	RoomType   string          `json:"roomType"`
	BoardType  string          `json:"boardType,omitempty"`
	Refundable bool            `json:"refundable"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency,omitempty"`
}

type PackagesResult struct {
	HotelID  string    `json:"hotelId"`
	Packages []Package `json:"packages"`
}

type PolicyRequest struct {
	SessionID string `json:"sessionId"`
	HotelID   string `json:"hotelId"`
	PackageID string `json:"packageId"`
}

type CancellationRule struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Charge decimal.Decimal `json:"charge"`
}

type Policy struct {
	PolicyID          string             `json:"policyId"`
	Refundable        bool               `json:"refundable"`
	CancellationRules []CancellationRule `json:"cancellationRules"`
	Price             decimal.Decimal    `json:"price"`
	ExpiresAt         string             `json:"expiresAt,omitempty"`
}

type Guest struct {
	Title     string `json:"title"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Type      string `json:"type"`
	Age       int    `json:"age,omitempty"`
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PrebookRequest struct {
	SessionID       string  `json:"sessionId"`
	HotelID         string  `json:"hotelId"`
	PackageID       string  `json:"packageId"`
	PolicyID        string  `json:"policyId"`
	Reference       string  `json:"clientReference"`
	Guests          []Guest `json:"guests"`
	Contact         Contact `json:"contact"`
	SpecialRequests string  `json:"specialRequests,omitempty"`
}

type PrebookResult struct {
	PrebookID string          `json:"prebookId"`
	Price     decimal.Decimal `json:"price"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
}

type ConfirmRequest struct {
	PrebookID string `json:"prebookId"`
	Reference string `json:"clientReference"`
}

type ConfirmResult struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	Status             string `json:"status"`
}

type CancelRequest struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	Reference          string `json:"clientReference"`
}

type CancelResult struct {
	Status       string          `json:"status"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
}
