package models

import "time"

// Employee statuses.
const (
	EmployeeActive   = "active"
	EmployeeDisabled = "disabled"
)

// Employee books on behalf of its company. EmployeeID and Phone are unique.
type Employee struct {
	ID           string    `bson:"_id" json:"id"`
	CompanyID    string    `bson:"companyId" json:"companyId"`
	EmployeeID   string    `bson:"employeeId" json:"employeeId"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string    `bson:"phone" json:"phone"`
	Designation  string    `bson:"designation,omitempty" json:"designation,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EmployeeUpdate carries optional changes; nil fields are left untouched.
type EmployeeUpdate struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=active disabled"`
	Password    *string `json:"password,omitempty" binding:"omitempty,min=8"`
}
