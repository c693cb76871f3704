package handlers

import (
	"PatientRegistry/middlewares"
	"PatientRegistry/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	service *services.PatientService
}

func NewStatisticsHandler(service *services.PatientService) *StatisticsHandler {
	return &StatisticsHandler{service: service}
}

func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondJSON(c, stats, http.StatusOK)
}
