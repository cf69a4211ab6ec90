package handlers

import (
	"net/http"

	"github.com/delonixservices/b2b-agent-sub001/internal/companies"
	"github.com/delonixservices/b2b-agent-sub001/internal/employees"
	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/internal/wallet"
	"github.com/gin-gonic/gin"
)

type profileRequest struct {
	ContactName *string `json:"contactName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
	GSTNumber   *string `json:"gstNumber"`
}

type employeeRequest struct {
	EmployeeID  string `json:"employeeId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"required,phone"`
	Password    string `json:"password" binding:"required,min=8"`
	Designation string `json:"designation"`
}

// CompanyHandler serves the self-service routes of company accounts and the
// employee profile.
type CompanyHandler struct {
	companies *companies.Service
	employees *employees.Service
	wallet    *wallet.Service
}

func NewCompanyHandler(d Deps) *CompanyHandler {
	return &CompanyHandler{companies: d.Companies, employees: d.Employees, wallet: d.Wallet}
}

// Register routes under /company; the group must require the company role.
func (h *CompanyHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.Profile)
	rg.PATCH("/profile", h.UpdateProfile)
	rg.GET("/employees", h.ListEmployees)
	rg.POST("/employees", h.CreateEmployee)
	rg.GET("/employees/:id", h.GetEmployee)
	rg.PATCH("/employees/:id", h.UpdateEmployee)
	rg.DELETE("/employees/:id", h.DeleteEmployee)
	rg.GET("/wallet", h.Wallet)
	rg.GET("/wallet/transactions", h.Transactions)
}

// RegisterEmployee routes under /employee; the group must require the employee role.
func (h *CompanyHandler) RegisterEmployee(rg *gin.RouterGroup) {
	rg.GET("/profile", h.EmployeeProfile)
}

func (h *CompanyHandler) Profile(c *gin.Context) {
	co, err := h.companies.Get(c.Request.Context(), principal(c).CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	co, err := h.companies.UpdateProfile(c.Request.Context(), principal(c).CompanyID, models.CompanyUpdate{
		ContactName: req.ContactName,
		Email:       req.Email,
		Address:     req.Address,
		GSTNumber:   req.GSTNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, co)
}

func (h *CompanyHandler) ListEmployees(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.employees.List(c.Request.Context(), principal(c).CompanyID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *CompanyHandler) CreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.employees.Create(c.Request.Context(), principal(c).CompanyID, employees.CreateInput{
		EmployeeID:  req.EmployeeID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		Designation: req.Designation,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *CompanyHandler) GetEmployee(c *gin.Context) {
	e, err := h.employees.Get(c.Request.Context(), principal(c).CompanyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *CompanyHandler) UpdateEmployee(c *gin.Context) {
	var req models.EmployeeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.employees.Update(c.Request.Context(), principal(c).CompanyID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *CompanyHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employees.Delete(c.Request.Context(), principal(c).CompanyID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CompanyHandler) Wallet(c *gin.Context) {
	w, err := h.wallet.Balance(c.Request.Context(), principal(c).CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *CompanyHandler) Transactions(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.wallet.Transactions(c.Request.Context(), principal(c).CompanyID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

// EmployeeProfile returns the caller's employee record with its company name.
func (h *CompanyHandler) EmployeeProfile(c *gin.Context) {
	p := principal(c)
	e, err := h.employees.Get(c.Request.Context(), p.CompanyID, p.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	co, err := h.companies.Get(c.Request.Context(), e.CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employee": e, "companyName": co.Name})
}
