package models

import (
	"errors"
	"time"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrDuplicateProtocol = errors.New("protocol number already exists")
)

// Patient model
type Patient struct {
	ID             uint             `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ProtocolNumber string           `gorm:"column:protocol_number;not null;uniqueIndex" json:"protocol_number"`
	Name           string           `gorm:"column:name;not null" json:"name"`
	Gender         string           `gorm:"column:gender;check:gender IN ('male', 'female');not null;index" json:"gender"`
	DateOfBirth    string           `gorm:"column:date_of_birth;not null" json:"date_of_birth"`
	AdmissionDate  string           `gorm:"column:admission_date;not null" json:"admission_date"`
	DischargeDate  *string          `gorm:"column:discharge_date" json:"discharge_date"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	ICDCodes       []PatientICDCode `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// Demographics is the projection of a patient the statistics are built from.
type Demographics struct {
	Gender      string `gorm:"column:gender"`
	DateOfBirth string `gorm:"column:date_of_birth"`
}

// PatientICDCode model
type PatientICDCode struct {
	ID          uint   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID   uint   `gorm:"column:patient_id;not null;index" json:"patient_id"`
	Code        string `gorm:"column:code;not null;index" json:"code"`
	Description string `gorm:"column:description;not null;default:''" json:"description"`
}

func (PatientICDCode) TableName() string {
	return "patient_icd_codes"
}

// Codes returns the ICD codes of the patient in insertion order.
func (p *Patient) Codes() []string {
	codes := make([]string, 0, len(p.ICDCodes))
	for _, c := range p.ICDCodes {
		codes = append(codes, c.Code)
	}
	return codes
}
