// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"PatientRegistry/config"
	"PatientRegistry/database"
	"PatientRegistry/models"
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates a fresh SQLite database in a temp directory with the
// full schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.InitDB(context.Background(), GetTestConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// GetTestConfig returns a configuration pointing at a temp SQLite file.
func GetTestConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Env:            "test",
		Port:           8930,
		DBDriver:       config.DriverSQLite,
		DBURL:          filepath.Join(t.TempDir(), "patients.db"),
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

// NewRegistration returns a valid registration request.
func NewRegistration(protocol, gender, dob string, codes ...string) models.RegisterPatientRequest {
	if len(codes) == 0 {
		codes = []string{"J18.9"}
	}
	inputs := make([]models.ICDCodeInput, 0, len(codes))
	for _, c := range codes {
		inputs = append(inputs, models.ICDCodeInput{Code: c})
	}
	return models.RegisterPatientRequest{
		ProtocolNumber: protocol,
		Name:           "Patient " + protocol,
		Gender:         gender,
		DateOfBirth:    dob,
		AdmissionDate:  "2024-06-01",
		ICDCodes:       inputs,
	}
}
