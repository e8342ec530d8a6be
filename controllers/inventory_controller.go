package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/services"
)

// AdminInventoryReport handles GET /api/v1/admin/inventory/report - the
// full inventory status report with blocked/available quantities and
// stock valuations
func AdminInventoryReport(c *gin.Context) {
	report, err := services.BuildInventoryReport(config.GetDB())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
