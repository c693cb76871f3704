package controllers

import (
	"PatientRegistry/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPatientRoutes registers the registry API under /api.
func SetupPatientRoutes(router *gin.Engine, patientHandler *handlers.PatientHandler, statisticsHandler *handlers.StatisticsHandler) {
	api := router.Group("/api")

	api.POST("/patients", patientHandler.RegisterPatient)
	api.GET("/patients", patientHandler.GetAllPatients)
	api.GET("/patients/search", patientHandler.SearchPatients)
	api.DELETE("/patients/:protocol_number", patientHandler.DeletePatient)

	api.GET("/statistics", statisticsHandler.GetStatistics)
}
