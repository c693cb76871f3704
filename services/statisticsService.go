package services

import (
	"PatientRegistry/models"
	"PatientRegistry/utils"
	"context"
	"fmt"
	"sort"
	"time"
)

// Statistics returns the patient total, the per-gender counts and the age
// group breakdown, all derived from one read so the three always agree.
func (s *PatientService) Statistics(ctx context.Context) (*models.Statistics, error) {
	today := s.today()
	key, cacheable := s.cacheKey(ctx, statisticsCachePrefix, today)

	var cached models.Statistics
	if cacheable && s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.repository.Demographics(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := summarize(rows, today)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.writeCache(ctx, key, stats)
	}
	return stats, nil
}

func summarize(rows []models.Demographics, today time.Time) (*models.Statistics, error) {
	stats := &models.Statistics{
		Total:    int64(len(rows)),
		ByGender: []models.GenderCount{},
	}

	counts := make(map[string]int64)
	for _, row := range rows {
		counts[row.Gender]++

		dob, err := utils.ParseDate(row.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth %q: %w", row.DateOfBirth, err)
		}
		switch utils.AgeGroup(utils.CalculateAge(dob, today)) {
		case utils.AgeGroupChildren:
			stats.AgeGroups.Children++
		case utils.AgeGroupAdults:
			stats.AgeGroups.Adults++
		default:
			stats.AgeGroups.Seniors++
		}
	}

	for gender, count := range counts {
		stats.ByGender = append(stats.ByGender, models.GenderCount{Gender: gender, Count: count})
	}
	sort.Slice(stats.ByGender, func(i, j int) bool {
		return stats.ByGender[i].Gender < stats.ByGender[j].Gender
	})
	return stats, nil
}
