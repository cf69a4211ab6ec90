package sessions

import (
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
)

// Session is a refresh session. It remembers who the token was issued to so a
// refreshed access token carries the same role and company.
type Session struct {
	ID           string    `bson:"_id" json:"id"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	Sub          string    `bson:"sub" json:"sub"`
	Role         string    `bson:"role" json:"role"`
	CompanyID    string    `bson:"companyId,omitempty" json:"companyId,omitempty"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Principal returns the identity the session was created for.
func (s *Session) Principal() models.Principal {
	return models.Principal{Subject: s.Sub, Role: s.Role, CompanyID: s.CompanyID, Name: s.Name}
}
