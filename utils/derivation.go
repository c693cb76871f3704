package utils

import (
	"math"
	"time"
)

// DateLayout is the wire and storage format of every calendar date.
const DateLayout = "2006-01-02"

const (
	AgeGroupChildren = "0-18"
	AgeGroupAdults   = "19-64"
	AgeGroupSeniors  = "65+"
)

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// Today returns the current calendar date at UTC midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateAge returns whole calendar years between dob and today. The year
// is not counted until today's month/day reaches the birth month/day.
func CalculateAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() ||
		(today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// LengthOfStay returns the inclusive number of days between admission and
// discharge, or nil while the patient is still admitted.
func LengthOfStay(admission time.Time, discharge *time.Time) *int {
	if discharge == nil {
		return nil
	}
	days := int(math.Ceil(discharge.Sub(admission).Hours()/24)) + 1
	return &days
}

// AgeGroup maps an age onto one of the three reporting buckets.
func AgeGroup(age int) string {
	switch {
	case age <= 18:
		return AgeGroupChildren
	case age <= 64:
		return AgeGroupAdults
	default:
		return AgeGroupSeniors
	}
}
