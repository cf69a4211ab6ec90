package models

// Roles carried in access tokens and refresh sessions.
const (
	RoleCompany  = "company"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// Principal is the authenticated caller resolved from token claims.
type Principal struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId,omitempty"`
	Name      string `json:"name,omitempty"`
}

// PrincipalFromClaims reads the portal claims from a verified token.
func PrincipalFromClaims(claims map[string]interface{}) Principal {
	p := Principal{}
	p.Subject, _ = claims["sub"].(string)
	p.Role, _ = claims["role"].(string)
	p.CompanyID, _ = claims["companyId"].(string)
	p.Name, _ = claims["name"].(string)
	return p
}

// Claims is the inverse of PrincipalFromClaims.
func (p Principal) Claims() map[string]interface{} {
	m := map[string]interface{}{"sub": p.Subject, "role": p.Role}
	if p.CompanyID != "" {
		m["companyId"] = p.CompanyID
	}
	if p.Name != "" {
		m["name"] = p.Name
	}
	return m
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsCompany() bool  { return p.Role == RoleCompany }
func (p Principal) IsEmployee() bool { return p.Role == RoleEmployee }
