package models

import "time"

// PatientView is a patient annotated with its derived fields.
type PatientView struct {
	ID             uint      `json:"id"`
	ProtocolNumber string    `json:"protocol_number"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender"`
	DateOfBirth    string    `json:"date_of_birth"`
	AdmissionDate  string    `json:"admission_date"`
	DischargeDate  *string   `json:"discharge_date"`
	CreatedAt      time.Time `json:"created_at"`
	Age            int       `json:"age"`
	LengthOfStay   *int      `json:"length_of_stay"`
	ICDCodes       []string  `json:"icd_codes"`
}

type SearchResult struct {
	Count    int           `json:"count"`
	Patients []PatientView `json:"patients"`
}

type GenderCount struct {
	Gender string `json:"gender"`
	Count  int64  `json:"count"`
}

// AgeGroups buckets patients by derived age.
type AgeGroups struct {
	Children int64 `json:"0-18"`
	Adults   int64 `json:"19-64"`
	Seniors  int64 `json:"65+"`
}

type Statistics struct {
	Total     int64         `json:"total"`
	ByGender  []GenderCount `json:"byGender"`
	AgeGroups AgeGroups     `json:"ageGroups"`
}

type RegisterResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PatientID uint   `json:"patientId"`
}
