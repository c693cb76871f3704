package controllers

import (
	"PatientRegistry/database"
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

//go:embed static/index.html
var indexPage []byte

// rootHandler serves the registry entry page.
func rootHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// SetupRootRoute sets up the entry page and health check.
func SetupRootRoute(router *gin.Engine, db *gorm.DB) {
	router.GET("/", rootHandler)
	router.GET("/health", healthHandler(db))
}
