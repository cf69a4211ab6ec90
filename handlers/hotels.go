package handlers

import (
	"net/http"

	"github.com/delonixservices/b2b-agent-sub001/internal/hotels"
	"github.com/gin-gonic/gin"
)

type HotelsHandler struct {
	hotels *hotels.Service
}

func NewHotelsHandler(d Deps) *HotelsHandler {
	return &HotelsHandler{hotels: d.Hotels}
}

// Register routes under /hotels
func (h *HotelsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/search", h.Search)
	rg.GET("/:hotelId/packages", h.Packages)
}

func (h *HotelsHandler) Search(c *gin.Context) {
	var req hotels.SearchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.hotels.Search(c.Request.Context(), principal(c).CompanyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HotelsHandler) Packages(c *gin.Context) {
	searchID := c.Query("searchId")
	if searchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchId is required"})
		return
	}
	res, err := h.hotels.Packages(c.Request.Context(), principal(c).CompanyID, searchID, c.Param("hotelId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
