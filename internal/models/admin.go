package models

import "time"

// Admin is a portal operator, either local (username/password) or mapped from Keycloak claims.
type Admin struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Sub          string    `bson:"sub,omitempty" json:"sub,omitempty"` // OIDC subject
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
