package handlers

import (
	"PatientRegistry/middlewares"
	"PatientRegistry/models"
	"PatientRegistry/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		middlewares.HttpError(c, http.StatusBadRequest, middlewares.ErrorResponse{
			Error:   verr.Error(),
			Code:    "VALIDATION_FAILED",
			Details: fieldErrors(verr.Err),
		}, err)
	case errors.Is(err, models.ErrDuplicateProtocol):
		middlewares.HttpError(c, http.StatusBadRequest, middlewares.ErrorResponse{
			Error: err.Error(),
			Code:  "DUPLICATE_PROTOCOL",
		}, err)
	case errors.Is(err, models.ErrPatientNotFound):
		middlewares.HttpError(c, http.StatusNotFound, middlewares.ErrorResponse{
			Error: "Patient not found",
			Code:  "NOT_FOUND",
		}, err)
	default:
		middlewares.HttpError(c, http.StatusInternalServerError, middlewares.ErrorResponse{
			Error: err.Error(),
		}, err)
	}
}

func badRequest(c *gin.Context, message string, err error) {
	middlewares.HttpError(c, http.StatusBadRequest, middlewares.ErrorResponse{
		Error: message,
		Code:  "BAD_REQUEST",
	}, err)
}

func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	details := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		details[field] = fieldErr.Error()
	}
	return details
}
