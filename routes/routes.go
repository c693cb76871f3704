package routes

import (
	"PatientRegistry/cache"
	"PatientRegistry/config"
	"PatientRegistry/controllers"
	"PatientRegistry/handlers"
	"PatientRegistry/metrics"
	"PatientRegistry/middlewares"
	"PatientRegistry/repositories"
	"PatientRegistry/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB, logger *zap.Logger, collector *metrics.Collector) http.Handler {
	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.LoggingMiddleware(logger))
	router.Use(middlewares.MetricsMiddleware(collector))
	router.Use(middlewares.SecurityHeaders())

	// Create and apply CORS middleware configuration
	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middlewares.RequestIDHeader},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: config.RateLimitRPS,
		Burst:             config.RateLimitBurst,
	}))

	// Initialize repositories, services, and handlers
	patientRepo := repositories.NewPatientRepository(db)
	patientService := services.NewPatientService(patientRepo, cache, config.CacheTTL, logger)

	patientHandler := handlers.NewPatientHandler(patientService, collector)
	statisticsHandler := handlers.NewStatisticsHandler(patientService)

	// Register routes
	controllers.SetupPatientRoutes(router, patientHandler, statisticsHandler)
	controllers.SetupRootRoute(router, db)
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	return router
}
