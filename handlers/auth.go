package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/audit"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/config"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/otp"
	"github.com/delonixservices/b2b-agent-sub001/internal/sessions"
	"github.com/delonixservices/b2b-agent-sub001/internal/textutil"
	"github.com/delonixservices/b2b-agent-sub001/internal/tokens"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	CompanyName   string `json:"companyName" binding:"required"`
	ContactName   string `json:"contactName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required,phone"`
	Password      string `json:"password" binding:"required,min=8"`
	CompanyNumber string `json:"companyNumber"`
	GSTNumber     string `json:"gstNumber"`
	Address       string `json:"address"`
}

type otpSendRequest struct {
	Phone   string `json:"phone" binding:"required,phone"`
	Purpose string `json:"purpose" binding:"required,oneof=signup login"`
}

type otpVerifyRequest struct {
	Phone   string `json:"phone" binding:"required,phone"`
	OTP     string `json:"otp" binding:"required,len=6,numeric"`
	Purpose string `json:"purpose" binding:"required,oneof=signup login"`
}

// LoginRequest is a password login for any of the three roles.
type LoginRequest struct {
	Role       string `json:"role" binding:"required,oneof=company employee admin"`
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	companies   *companies.Service
	employees   *employees.Service
	admins      *admins.Service
	sessionsSvc *sessions.Service
	otp         *otp.Service
	wallet      *wallet.Service
	audit       *audit.Logger
	verifier    *tokens.Verifier
}

func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{
		cfg:         d.Config,
		companies:   d.Companies,
		employees:   d.Employees,
		admins:      d.Admins,
		sessionsSvc: d.Sessions,
		otp:         d.OTP,
		wallet:      d.Wallet,
		audit:       d.Audit,
		verifier:    tokens.NewVerifier(d.Config.JWT.Secret),
	}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/otp/send", h.SendOTP)
	rg.POST("/otp/verify", h.VerifyOTP)
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

// Signup registers a pending company, opens its wallet and sends the phone OTP.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	co, err := h.companies.Signup(ctx, companies.SignupInput{
		Name:          req.CompanyName,
		ContactName:   req.ContactName,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      req.Password,
		CompanyNumber: req.CompanyNumber,
		GSTNumber:     req.GSTNumber,
		Address:       req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.wallet.Open(ctx, co.ID); err != nil {
		logger.Errorf("signup %s: open wallet: %v", co.ID, err)
	}
	otpSent := true
	if err := h.otp.Send(ctx, co.Phone, otp.PurposeSignup); err != nil {
		logger.Warnf("signup %s: send otp: %v", co.ID, err)
		otpSent = false
	}
	c.JSON(http.StatusCreated, gin.H{"companyId": co.ID, "status": co.Status, "otpSent": otpSent})
}

// SendOTP issues a code for signup verification or passwordless login.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req otpSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	phone := textutil.NormalizePhone(req.Phone)
	switch req.Purpose {
	case otp.PurposeSignup:
		co, err := h.companies.GetByPhone(ctx, phone)
		if err != nil {
			respondError(c, err)
			return
		}
		if co.PhoneVerified {
			c.JSON(http.StatusConflict, gin.H{"error": "phone already verified"})
			return
		}
	case otp.PurposeLogin:
		if _, err := h.principalByPhone(ctx, phone); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := h.otp.Send(ctx, phone, req.Purpose); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "otp sent"})
}

// VerifyOTP checks a code. Signup codes activate the company; both purposes
// return tokens.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	phone := textutil.NormalizePhone(req.Phone)
	if err := h.otp.Verify(ctx, phone, req.OTP, req.Purpose); err != nil {
		respondError(c, err)
		return
	}

	var (
		p   models.Principal
		err error
	)
	if req.Purpose == otp.PurposeSignup {
		var co *models.Company
		if co, err = h.companies.VerifyPhone(ctx, phone); err == nil {
			if err = companies.CheckLoginAllowed(co); err == nil {
				p = companyPrincipal(co)
			}
		}
	} else {
		p, err = h.principalByPhone(ctx, phone)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueTokens(c, p)
}

// principalByPhone resolves the company or employee owning phone and checks it may sign in.
func (h *AuthHandler) principalByPhone(ctx context.Context, phone string) (models.Principal, error) {
	co, err := h.companies.GetByPhone(ctx, phone)
	if err == nil {
		if err := companies.CheckLoginAllowed(co); err != nil {
			return models.Principal{}, err
		}
		return companyPrincipal(co), nil
	}
	if !errors.Is(err, companies.ErrNotFound) {
		return models.Principal{}, err
	}
	e, err := h.employees.GetByPhone(ctx, phone)
	if err != nil {
		return models.Principal{}, err
	}
	if err := h.employeeAllowed(ctx, e); err != nil {
		return models.Principal{}, err
	}
	return employeePrincipal(e), nil
}

func (h *AuthHandler) employeeAllowed(ctx context.Context, e *models.Employee) error {
	if e.Status == models.EmployeeDisabled {
		return employees.ErrDisabled
	}
	co, err := h.companies.Get(ctx, e.CompanyID)
	if err != nil {
		return err
	}
	return companies.CheckLoginAllowed(co)
}

// Login authenticates by password for the requested role.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	var p models.Principal
	switch req.Role {
	case models.RoleCompany:
		co, err := h.companies.Authenticate(ctx, req.Identifier, req.Password)
		if err == nil {
			err = companies.CheckLoginAllowed(co)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		p = companyPrincipal(co)
	case models.RoleEmployee:
		e, err := h.employees.Authenticate(ctx, req.Identifier, req.Password)
		if err == nil {
			err = h.employeeAllowed(ctx, e)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		p = employeePrincipal(e)
	case models.RoleAdmin:
		a, err := h.admins.Authenticate(ctx, req.Identifier, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		p = models.Principal{Subject: a.ID, Role: models.RoleAdmin, Name: a.Name}
		h.audit.Record(ctx, p, audit.ActionAdminLogin, "admin", a.ID, requestID(c), nil)
	}
	h.issueTokens(c, p)
}

func companyPrincipal(co *models.Company) models.Principal {
	return models.Principal{Subject: co.ID, Role: models.RoleCompany, CompanyID: co.ID, Name: co.Name}
}

func employeePrincipal(e *models.Employee) models.Principal {
	return models.Principal{Subject: e.ID, Role: models.RoleEmployee, CompanyID: e.CompanyID, Name: e.Name}
}

func (h *AuthHandler) accessToken(p models.Principal) (string, error) {
	access, err := tokens.GenerateAccessToken(h.cfg, p, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}
	return access, nil
}

func (h *AuthHandler) issueTokens(c *gin.Context, p models.Principal) {
	access, err := h.accessToken(p)
	if err != nil {
		respondError(c, err)
		return
	}
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), p, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		respondError(c, fmt.Errorf("create session: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
		"user":         p,
	})
}

// stillAllowed re-checks a refreshed principal against the current account state.
func (h *AuthHandler) stillAllowed(ctx context.Context, p models.Principal) error {
	switch p.Role {
	case models.RoleCompany:
		co, err := h.companies.Get(ctx, p.CompanyID)
		if err != nil {
			return err
		}
		return companies.CheckLoginAllowed(co)
	case models.RoleEmployee:
		e, err := h.employees.GetByID(ctx, p.Subject)
		if err != nil {
			return err
		}
		return h.employeeAllowed(ctx, e)
	}
	return nil
}

// Refresh rotates a refresh token and returns a new access token for the same principal.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	next, sess, err := h.sessionsSvc.Rotate(ctx, req.RefreshToken, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		respondError(c, fmt.Errorf("rotate session: %w", err))
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	p := sess.Principal()
	if err := h.stillAllowed(ctx, p); err != nil {
		_ = h.sessionsSvc.DeleteRefresh(ctx, next)
		if errors.Is(err, companies.ErrNotFound) || errors.Is(err, employees.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
			return
		}
		respondError(c, err)
		return
	}
	access, err := h.accessToken(p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": next,
		"tokenType":    "Bearer",
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Logout invalidates the refresh token and blacklists the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		var at string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &at); n == 1 {
			if exp, err := h.verifier.ExpiresAt(at); err == nil {
				if err := sessions.BlacklistAccessToken(c.Request.Context(), at, time.Until(exp)); err != nil {
					respondError(c, fmt.Errorf("blacklist access token: %w", err))
					return
				}
			}
		}
	}
	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, fmt.Errorf("remove session: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
