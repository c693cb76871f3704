package services

import (
	"PatientRegistry/cache"
	"PatientRegistry/models"
	"PatientRegistry/repositories"
	"PatientRegistry/utils"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	patientsCachePrefix   = "patients_cache:"
	statisticsCachePrefix = "statistics_cache:"
	// generationKey is bumped on every write; cached responses are keyed by
	// the generation read before the store was queried.
	generationKey = "registry_gen"
)

type PatientService struct {
	repository *repositories.PatientRepository
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewPatientService(repository *repositories.PatientRepository, cache *cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *PatientService {
	return &PatientService{
		repository: repository,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register validates the request and stores the patient with its ICD codes.
// It returns the new patient id.
func (s *PatientService) Register(ctx context.Context, req models.RegisterPatientRequest) (uint, error) {
	req = utils.NormalizeRegistration(req)
	if err := utils.ValidatePatientRegistration(req, s.today()); err != nil {
		return 0, &ValidationError{Err: err}
	}

	patient := &models.Patient{
		ProtocolNumber: req.ProtocolNumber,
		Name:           req.Name,
		Gender:         req.Gender,
		DateOfBirth:    req.DateOfBirth,
		AdmissionDate:  req.AdmissionDate,
		DischargeDate:  req.DischargeDate,
	}
	codes := make([]models.PatientICDCode, 0, len(req.ICDCodes))
	for _, c := range req.ICDCodes {
		codes = append(codes, models.PatientICDCode{Code: c.Code, Description: c.Description})
	}

	if err := s.repository.Create(ctx, patient, codes); err != nil {
		return 0, err
	}
	s.invalidate(ctx)

	s.logger.Info("patient registered",
		zap.Uint("patient_id", patient.ID),
		zap.String("protocol_number", patient.ProtocolNumber),
		zap.Int("icd_codes", len(codes)),
	)
	return patient.ID, nil
}

// GetAll returns every patient annotated with age, length of stay and codes.
func (s *PatientService) GetAll(ctx context.Context) ([]models.PatientView, error) {
	today := s.today()
	key, cacheable := s.cacheKey(ctx, patientsCachePrefix, today)

	var cached []models.PatientView
	if cacheable && s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	patients, err := s.repository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	views, err := toViews(patients, today)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.writeCache(ctx, key, views)
	}
	return views, nil
}

// Search filters patients by ICD code substring and gender in the store and
// by minimum age once ages have been derived.
func (s *PatientService) Search(ctx context.Context, filter models.SearchFilter) (*models.SearchResult, error) {
	patients, err := s.repository.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := toViews(patients, s.today())
	if err != nil {
		return nil, err
	}

	if filter.MinAge != nil {
		kept := views[:0]
		for _, v := range views {
			if v.Age >= *filter.MinAge {
				kept = append(kept, v)
			}
		}
		views = kept
	}

	return &models.SearchResult{Count: len(views), Patients: views}, nil
}

// Delete removes a patient and its ICD codes by protocol number.
func (s *PatientService) Delete(ctx context.Context, protocolNumber string) error {
	if err := s.repository.DeleteByProtocolNumber(ctx, protocolNumber); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("patient deleted", zap.String("protocol_number", protocolNumber))
	return nil
}

func (s *PatientService) today() time.Time {
	return utils.Today(s.now())
}

// cacheKey returns the key for a cached response of the current generation.
// It reports false when the generation cannot be read or the cache is off.
func (s *PatientService) cacheKey(ctx context.Context, prefix string, today time.Time) (string, bool) {
	if !s.cache.Enabled() {
		return "", false
	}
	gen, err := s.cache.GetInt64(ctx, generationKey)
	if err != nil {
		s.logger.Warn("failed to read cache generation", zap.Error(err))
		return "", false
	}
	return generationCacheKey(prefix, today, gen), true
}

func generationCacheKey(prefix string, today time.Time, gen int64) string {
	return fmt.Sprintf("%s%s:%d", prefix, today.Format(utils.DateLayout), gen)
}

// invalidate moves the cache to a new generation and drops every cached list
// and statistics response. The write has already committed, so cache
// failures are logged rather than returned.
func (s *PatientService) invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, generationKey); err != nil {
		s.logger.Error("failed to bump cache generation", zap.Error(err))
	}
	for _, prefix := range []string{patientsCachePrefix, statisticsCachePrefix} {
		if err := s.cache.DeleteAll(ctx, prefix+"*"); err != nil {
			s.logger.Error("failed to invalidate cache", zap.String("prefix", prefix), zap.Error(err))
		}
	}
}

func (s *PatientService) readCache(ctx context.Context, key string, dst interface{}) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("failed to decode cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *PatientService) writeCache(ctx context.Context, key string, value interface{}) {
	if !s.cache.Enabled() {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func toViews(patients []models.Patient, today time.Time) ([]models.PatientView, error) {
	views := make([]models.PatientView, 0, len(patients))
	for i := range patients {
		v, err := toView(&patients[i], today)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func toView(p *models.Patient, today time.Time) (models.PatientView, error) {
	dob, err := utils.ParseDate(p.DateOfBirth)
	if err != nil {
		return models.PatientView{}, fmt.Errorf("patient %s has invalid date_of_birth: %w", p.ProtocolNumber, err)
	}
	admission, err := utils.ParseDate(p.AdmissionDate)
	if err != nil {
		return models.PatientView{}, fmt.Errorf("patient %s has invalid admission_date: %w", p.ProtocolNumber, err)
	}
	var discharge *time.Time
	if p.DischargeDate != nil {
		d, err := utils.ParseDate(*p.DischargeDate)
		if err != nil {
			return models.PatientView{}, fmt.Errorf("patient %s has invalid discharge_date: %w", p.ProtocolNumber, err)
		}
		discharge = &d
	}

	return models.PatientView{
		ID:             p.ID,
		ProtocolNumber: p.ProtocolNumber,
		Name:           p.Name,
		Gender:         p.Gender,
		DateOfBirth:    p.DateOfBirth,
		AdmissionDate:  p.AdmissionDate,
		DischargeDate:  p.DischargeDate,
		CreatedAt:      p.CreatedAt,
		Age:            utils.CalculateAge(dob, today),
		LengthOfStay:   utils.LengthOfStay(admission, discharge),
		ICDCodes:       p.Codes(),
	}, nil
}
