package handlers

import (
	"errors"
	"net/http"

	"github.com/delonixservices/b2b-agent-sub001/internal/admins"
	"github.com/delonixservices/b2b-agent-sub001/internal/audit"
	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/markups"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/money"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/delonixservices/b2b-agent-sub001/pkg/logger"
	"github.com/delonixservices/b2b-agent-sub001/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type walletMoveRequest struct {
	Amount money.Amount `json:"amount" binding:"required"`
	Note   string       `json:"note"`
}

type configRequest struct {
	DefaultMarkup markups.Rule `json:"defaultMarkup"`
	Currency      string       `json:"currency" binding:"omitempty,len=3,alpha"`
}

// AdminHandler serves company management, pricing and audit routes.
type AdminHandler struct {
	admins    *admins.Service
	companies *companies.Service
	employees *employees.Service
	wallet    *wallet.Service
	markups   *markups.Service
	bookings  *bookings.Service
	audit     *audit.Logger
}

func NewAdminHandler(d Deps) *AdminHandler {
	return &AdminHandler{
		admins:    d.Admins,
		companies: d.Companies,
		employees: d.Employees,
		wallet:    d.Wallet,
		markups:   d.Markups,
		bookings:  d.Bookings,
		audit:     d.Audit,
	}
}

// Register routes under /admin; the group must require the admin role.
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)

	rg.GET("/companies", h.ListCompanies)
	rg.GET("/companies/:id", h.GetCompany)
	rg.PATCH("/companies/:id", h.UpdateCompany)
	rg.DELETE("/companies/:id", h.DeleteCompany)
	rg.POST("/companies/:id/wallet/credit", h.Credit)
	rg.POST("/companies/:id/wallet/debit", h.Debit)
	rg.GET("/companies/:id/wallet/transactions", h.Transactions)

	rg.GET("/markups", h.ListMarkups)
	rg.PUT("/markups/:hotelId", h.PutMarkup)
	rg.DELETE("/markups/:hotelId", h.DeleteMarkup)
	rg.GET("/config", h.GetConfig)
	rg.PUT("/config", h.PutConfig)

	rg.GET("/bookings", h.ListBookings)
	rg.GET("/audit", h.ListAudit)
}

func (h *AdminHandler) record(c *gin.Context, action, targetType, targetID string, details map[string]interface{}) {
	h.audit.Record(c.Request.Context(), principal(c), action, targetType, targetID, requestID(c), details)
}

// Me returns the calling admin. SSO admins are created or refreshed from their token claims.
func (h *AdminHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	p := principal(c)
	a, err := h.admins.GetByID(ctx, p.Subject)
	if errors.Is(err, admins.ErrNotFound) {
		claims := c.GetStringMap(middleware.ClaimsKey)
		a, err = h.admins.UpsertFromClaims(ctx, claims)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": a})
}

func (h *AdminHandler) ListCompanies(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.companies.List(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *AdminHandler) GetCompany(c *gin.Context) {
	ctx := c.Request.Context()
	co, err := h.companies.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"company": co, "balance": money.Amount(0)}
	if w, err := h.wallet.Balance(ctx, co.ID); err == nil {
		resp["balance"] = w.Balance
		resp["currency"] = w.Currency
	} else if !errors.Is(err, wallet.ErrNotFound) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) UpdateCompany(c *gin.Context) {
	var req models.CompanyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	co, err := h.companies.AdminUpdate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	details := map[string]interface{}{}
	if req.Status != nil {
		details["status"] = *req.Status
	}
	if req.Name != nil {
		details["name"] = *req.Name
	}
	h.record(c, audit.ActionCompanyUpdate, "company", co.ID, details)
	c.JSON(http.StatusOK, co)
}

// DeleteCompany removes a company with an empty wallet together with its employees.
func (h *AdminHandler) DeleteCompany(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.companies.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.wallet.Close(ctx, id); err != nil && !errors.Is(err, wallet.ErrNotFound) {
		respondError(c, err)
		return
	}
	n, err := h.employees.DeleteByCompany(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.companies.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	logger.Infof("company %s deleted with %d employees", id, n)
	h.record(c, audit.ActionCompanyDelete, "company", id, map[string]interface{}{"employeesRemoved": n})
	c.JSON(http.StatusOK, gin.H{"message": "company deleted", "employeesRemoved": n})
}

func (h *AdminHandler) move(c *gin.Context, credit bool) {
	var req walletMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := h.companies.Get(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	mv := wallet.Movement{CompanyID: id, Amount: req.Amount, Note: req.Note, CreatedBy: principal(c).Subject, Reference: requestID(c)}
	var (
		tx     *wallet.Transaction
		err    error
		action = audit.ActionWalletCredit
	)
	if credit {
		tx, err = h.wallet.Credit(ctx, mv)
	} else {
		action = audit.ActionWalletDebit
		tx, err = h.wallet.Debit(ctx, mv)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	h.record(c, action, "company", id, map[string]interface{}{"amount": req.Amount.String(), "balanceAfter": tx.BalanceAfter.String()})
	c.JSON(http.StatusOK, tx)
}

func (h *AdminHandler) Credit(c *gin.Context) { h.move(c, true) }

func (h *AdminHandler) Debit(c *gin.Context) { h.move(c, false) }

func (h *AdminHandler) Transactions(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.wallet.Transactions(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *AdminHandler) ListMarkups(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.markups.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *AdminHandler) PutMarkup(c *gin.Context) {
	var rule markups.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.markups.Upsert(c.Request.Context(), c.Param("hotelId"), rule, principal(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	h.record(c, audit.ActionMarkupUpsert, "markup", m.HotelID, map[string]interface{}{"type": rule.Type, "value": rule.Value.String()})
	c.JSON(http.StatusOK, m)
}

func (h *AdminHandler) DeleteMarkup(c *gin.Context) {
	hotelID := markups.HotelID(c.Param("hotelId"))
	if err := h.markups.Delete(c.Request.Context(), hotelID); err != nil {
		respondError(c, err)
		return
	}
	h.record(c, audit.ActionMarkupDelete, "markup", hotelID, nil)
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) GetConfig(c *gin.Context) {
	cfg, err := h.markups.Config(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *AdminHandler) PutConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cfg, err := h.markups.UpdateConfig(c.Request.Context(), req.DefaultMarkup, req.Currency, principal(c).Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	h.record(c, audit.ActionConfigUpdate, "config", markups.ConfigID, map[string]interface{}{
		"type":     req.DefaultMarkup.Type,
		"value":    req.DefaultMarkup.Value.String(),
		"currency": cfg.Currency,
	})
	c.JSON(http.StatusOK, cfg)
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	page := pageFromQuery(c)
	f := bookings.Filter{CompanyID: c.Query("companyId"), Status: c.Query("status")}
	list, total, err := h.bookings.AdminList(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *AdminHandler) ListAudit(c *gin.Context) {
	page := pageFromQuery(c)
	f := audit.Filter{ActorID: c.Query("actorId"), Action: c.Query("action"), TargetID: c.Query("targetId")}
	list, total, err := h.audit.List(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}
