package utils

import (
	"PatientRegistry/models"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateFormatMessage = "must be a date in YYYY-MM-DD format"

// Validation errors
var (
	ErrNoICDCodes               = errors.New("at least one ICD code is required")
	ErrDischargeBeforeAdmission = errors.New("must not be before admission_date")
)

// ValidatePatientRegistration validates a registration request using
// ozzo-validation. The returned error is a validation.Errors keyed by the
// JSON field name.
func ValidatePatientRegistration(req models.RegisterPatientRequest, today time.Time) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.ProtocolNumber, validation.Required),
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Gender, validation.Required,
			validation.In(models.GenderMale, models.GenderFemale).Error("must be either male or female")),
		validation.Field(&req.DateOfBirth, validation.Required,
			validation.Date(DateLayout).Max(today).Error(dateFormatMessage).RangeError("must not be in the future")),
		validation.Field(&req.AdmissionDate, validation.Required,
			validation.Date(DateLayout).Error(dateFormatMessage)),
		validation.Field(&req.DischargeDate,
			validation.Date(DateLayout).Error(dateFormatMessage),
			validation.By(notBefore(req.AdmissionDate))),
		validation.Field(&req.ICDCodes,
			validation.Required.Error(ErrNoICDCodes.Error()),
			validation.By(hasNonBlankCode)),
	)
}

// NormalizeRegistration trims every text field, drops ICD entries with a
// blank code and turns an empty discharge date into nil.
func NormalizeRegistration(req models.RegisterPatientRequest) models.RegisterPatientRequest {
	req.ProtocolNumber = strings.TrimSpace(req.ProtocolNumber)
	req.Name = strings.TrimSpace(req.Name)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	req.AdmissionDate = strings.TrimSpace(req.AdmissionDate)
	if req.DischargeDate != nil {
		discharge := strings.TrimSpace(*req.DischargeDate)
		if discharge == "" {
			req.DischargeDate = nil
		} else {
			req.DischargeDate = &discharge
		}
	}

	codes := make([]models.ICDCodeInput, 0, len(req.ICDCodes))
	for _, c := range req.ICDCodes {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			continue
		}
		codes = append(codes, models.ICDCodeInput{Code: code, Description: strings.TrimSpace(c.Description)})
	}
	req.ICDCodes = codes
	return req
}

// hasNonBlankCode requires at least one entry carrying a code.
func hasNonBlankCode(value interface{}) error {
	codes, _ := value.([]models.ICDCodeInput)
	for _, c := range codes {
		if strings.TrimSpace(c.Code) != "" {
			return nil
		}
	}
	return ErrNoICDCodes
}

// notBefore rejects a discharge date earlier than the admission date.
// Malformed dates are left to the Date rule.
func notBefore(admission string) validation.RuleFunc {
	return func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil || validation.IsEmpty(v) {
			return nil
		}
		raw, ok := v.(string)
		if !ok {
			return nil
		}
		discharge, err := ParseDate(raw)
		if err != nil {
			return nil
		}
		admitted, err := ParseDate(admission)
		if err != nil {
			return nil
		}
		if discharge.Before(admitted) {
			return ErrDischargeBeforeAdmission
		}
		return nil
	}
}
