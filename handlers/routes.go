package handlers

import (
	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/audit"
	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/otp"
	"github.com/delonixservices/b2b-agent-sub001/internal/sessions"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Deps are the services the API routes are built from.
type Deps struct {
	Config    *config.Config
	Companies *companies.Service
	Employees *employees.Service
	Admins    *admins.Service
	Sessions  *sessions.Service
	OTP       *otp.Service
	Wallet    *wallet.Service
	Markups   *markups.Service
	Hotels    *hotels.Service
	Bookings  *bookings.Service
	Audit     *audit.Logger

	// Verifier checks bearer tokens on every protected route.
	Verifier middleware.Verifier
	// AuthLimiter, when set, guards the unauthenticated /api/auth routes.
	AuthLimiter gin.HandlerFunc
}

// RegisterRoutes mounts the portal API under /api.
func RegisterRoutes(r *gin.Engine, d Deps) {
	RegisterValidators()
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if d.AuthLimiter != nil {
		authGroup.Use(d.AuthLimiter)
	}
	NewAuthHandler(d).Register(authGroup)

	protected := api.Group("", middleware.AuthMiddleware(d.Verifier))

	company := NewCompanyHandler(d)
	company.Register(protected.Group("/company", middleware.RequireRole(models.RoleCompany)))
	company.RegisterEmployee(protected.Group("/employee", middleware.RequireRole(models.RoleEmployee)))

	agents := middleware.RequireRole(models.RoleCompany, models.RoleEmployee)
	NewHotelsHandler(d).Register(protected.Group("/hotels", agents))
	NewBookingsHandler(d).Register(protected.Group("/bookings", agents))

	NewAdminHandler(d).Register(protected.Group("/admin", middleware.RequireRole(models.RoleAdmin)))
}
