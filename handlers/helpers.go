package handlers

import (
	"net/http"
	"strconv"

	"github.com/delonixservices/b2b-agent-sub001/internal/models"
	"github.com/delonixservices/b2b-agent-sub001/pkg/middleware"
	"github.com/gin-gonic/gin"
)

func pageFromQuery(c *gin.Context) models.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.Page{Page: page, Limit: limit}.Normalize()
}

func listResponse(c *gin.Context, items interface{}, total int64, page models.Page) {
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "page": page.Page, "limit": page.Limit})
}

// principal returns the authenticated caller; routes using it sit behind AuthMiddleware.
func principal(c *gin.Context) models.Principal {
	p, _ := middleware.PrincipalFromContext(c)
	return p
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}
