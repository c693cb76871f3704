package handlers

import (
	"PatientRegistry/metrics"
	"PatientRegistry/middlewares"
	"PatientRegistry/models"
	"PatientRegistry/services"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	service   *services.PatientService
	collector *metrics.Collector
}

func NewPatientHandler(service *services.PatientService, collector *metrics.Collector) *PatientHandler {
	return &PatientHandler{service: service, collector: collector}
}

func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req models.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error(), err)
		return
	}

	id, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if h.collector != nil {
		h.collector.PatientsRegisteredTotal.Inc()
	}

	middlewares.RespondJSON(c, models.RegisterResponse{
		Success:   true,
		Message:   "Patient registered successfully",
		PatientID: id,
	}, http.StatusOK)
}

func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	patients, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondJSON(c, patients, http.StatusOK)
}

// SearchPatients handles GET /api/patients/search?icd_code=&min_age=&gender=
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	filter := models.SearchFilter{
		ICDCode: strings.TrimSpace(c.Query("icd_code")),
		Gender:  strings.ToLower(strings.TrimSpace(c.Query("gender"))),
	}

	if raw := strings.TrimSpace(c.Query("min_age")); raw != "" {
		minAge, err := strconv.Atoi(raw)
		if err != nil || minAge < 0 {
			badRequest(c, "min_age must be a non-negative integer", err)
			return
		}
		filter.MinAge = &minAge
	}

	result, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middlewares.RespondJSON(c, result, http.StatusOK)
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	protocolNumber := c.Param("protocol_number")
	if err := h.service.Delete(c.Request.Context(), protocolNumber); err != nil {
		respondServiceError(c, err)
		return
	}
	if h.collector != nil {
		h.collector.PatientsDeletedTotal.Inc()
	}
	middlewares.RespondJSON(c, gin.H{"message": "Patient deleted successfully"}, http.StatusOK)
}
