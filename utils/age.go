package utils

import (
	"math"
	"time"
)

// DefaultAgeMonths is assumed when the birth date is unknown.
const DefaultAgeMonths = 6

const daysPerMonth = 30.44

// AgeInMonths returns floor(days since birth / 30.44), or DefaultAgeMonths
// when birth is nil. A birth date after now yields 0.
func AgeInMonths(birth *time.Time, now time.Time) int {
	if birth == nil || birth.IsZero() {
		return DefaultAgeMonths
	}
	days := now.Sub(*birth).Hours() / 24
	if days < 0 {
		return 0
	}
	return int(math.Floor(days / daysPerMonth))
}
