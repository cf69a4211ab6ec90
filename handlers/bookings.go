package handlers

import (
	"net/http"

	"github.com/delonixservices/b2b-agent-sub001/internal/bookings"
	"github.com/gin-gonic/gin"
)

type confirmRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type BookingsHandler struct {
	bookings *bookings.Service
}

func NewBookingsHandler(d Deps) *BookingsHandler {
	return &BookingsHandler{bookings: d.Bookings}
}

// Register routes under /bookings
func (h *BookingsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/policy", h.Policy)
	rg.POST("/prebook", h.Prebook)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/confirm", h.Confirm)
	rg.POST("/:id/cancel", h.Cancel)
	rg.GET("/:id/voucher", h.Voucher)
}

func (h *BookingsHandler) Policy(c *gin.Context) {
	var req bookings.PolicyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q, err := h.bookings.Policy(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *BookingsHandler) Prebook(c *gin.Context) {
	var req bookings.PrebookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.bookings.Prebook(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingsHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	list, total, err := h.bookings.List(c.Request.Context(), principal(c), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	listResponse(c, list, total, page)
}

func (h *BookingsHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingsHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.bookings.Confirm(c.Request.Context(), principal(c), c.Param("id"), req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingsHandler) Cancel(c *gin.Context) {
	b, err := h.bookings.Cancel(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		if b != nil {
			c.JSON(http.StatusAccepted, gin.H{"booking": b, "error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingsHandler) Voucher(c *gin.Context) {
	u, err := h.bookings.VoucherURL(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u})
}
