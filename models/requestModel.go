package models

// ICDCodeInput is a single diagnosis submitted with a registration.
type ICDCodeInput struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RegisterPatientRequest is the body of POST /api/patients.
type RegisterPatientRequest struct {
	ProtocolNumber string         `json:"protocol_number"`
	Name           string         `json:"name"`
	Gender         string         `json:"gender"`
	DateOfBirth    string         `json:"date_of_birth"`
	AdmissionDate  string         `json:"admission_date"`
	DischargeDate  *string        `json:"discharge_date"`
	ICDCodes       []ICDCodeInput `json:"icd_codes"`
}

// SearchFilter holds the optional search criteria. Zero values disable a filter.
type SearchFilter struct {
	ICDCode string
	Gender  string
	MinAge  *int
}
