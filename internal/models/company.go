package models

import "time"

// Company statuses.
const (
	CompanyPending = "pending"
	CompanyActive  = "active"
	CompanyBlocked = "blocked"
)

// Company is a B2B customer account. Phone is unique; CompanyNumber is sparse unique.
type Company struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	ContactName   string    `bson:"contactName" json:"contactName"`
	Email         string    `bson:"email" json:"email"`
	Phone         string    `bson:"phone" json:"phone"`
	CompanyNumber string    `bson:"companyNumber,omitempty" json:"companyNumber,omitempty"`
	GSTNumber     string    `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	PasswordHash  string    `bson:"passwordHash" json:"-"`
	Status        string    `bson:"status" json:"status"`
	PhoneVerified bool      `bson:"phoneVerified" json:"phoneVerified"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CompanyUpdate carries optional profile changes; nil fields are left untouched.
type CompanyUpdate struct {
	Name        *string `json:"name,omitempty"`
	ContactName *string `json:"contactName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	GSTNumber   *string `json:"gstNumber,omitempty"`
	Status      *string `json:"status,omitempty"`
}
