package repositories

import (
	"PatientRegistry/models"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create inserts the patient and its ICD codes in one transaction. Nothing is
// persisted when any insert fails.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient, codes []models.PatientICDCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Patient{}).
			Where("protocol_number = ?", patient.ProtocolNumber).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check for existing patient: %w", err)
		}
		if existing > 0 {
			return models.ErrDuplicateProtocol
		}

		if err := tx.Omit(clause.Associations).Create(patient).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrDuplicateProtocol
			}
			return fmt.Errorf("failed to create patient: %w", err)
		}

		for i := range codes {
			codes[i].PatientID = patient.ID
		}
		if err := tx.Create(&codes).Error; err != nil {
			return fmt.Errorf("failed to create ICD codes: %w", err)
		}
		patient.ICDCodes = codes
		return nil
	})
}

// GetAll returns every patient with its ICD codes, most recently registered first.
func (r *PatientRepository) GetAll(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.withCodes(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all patients: %w", err)
	}
	return patients, nil
}

// Search returns patients having an ICD code containing filter.ICDCode as a
// literal substring and matching filter.Gender. Empty filters are ignored.
// MinAge is not applied here.
func (r *PatientRepository) Search(ctx context.Context, filter models.SearchFilter) ([]models.Patient, error) {
	db := r.db.WithContext(ctx)
	query := r.withCodes(db)

	if filter.ICDCode != "" {
		matching := db.Model(&models.PatientICDCode{}).
			Select("patient_id").
			Where(`code LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(filter.ICDCode)+"%")
		query = query.Where("id IN (?)", matching)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	var patients []models.Patient
	if err := query.Order("created_at DESC").Order("id DESC").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

// DeleteByProtocolNumber removes the patient and its ICD codes. Returns
// models.ErrPatientNotFound when no patient has that protocol number.
func (r *PatientRepository) DeleteByProtocolNumber(ctx context.Context, protocolNumber string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.Select("id").Where("protocol_number = ?", protocolNumber).First(&patient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrPatientNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find patient: %w", err)
		}

		if err := tx.Where("patient_id = ?", patient.ID).Delete(&models.PatientICDCode{}).Error; err != nil {
			return fmt.Errorf("failed to delete ICD codes: %w", err)
		}

		result := tx.Delete(&models.Patient{}, patient.ID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete patient: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.ErrPatientNotFound
		}
		return nil
	})
}

// Demographics returns the gender and date of birth of every patient. All
// statistics are derived from this one statement so they share a snapshot.
func (r *PatientRepository) Demographics(ctx context.Context) ([]models.Demographics, error) {
	var rows []models.Demographics
	err := r.db.WithContext(ctx).Model(&models.Patient{}).
		Select("gender, date_of_birth").
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load patient demographics: %w", err)
	}
	return rows, nil
}

func (r *PatientRepository) withCodes(db *gorm.DB) *gorm.DB {
	return db.Preload("ICDCodes", func(db *gorm.DB) *gorm.DB {
		return db.Select("id, patient_id, code, description").Order("id")
	})
}
