package services

import "firstbites/models"

// SafeExposures is the number of logged exposures after which an allergen is SAFE.
const SafeExposures = 3

// NextState applies one logging event to the current (status, exposure count)
// of a food. prevCount is 0 when no state exists yet.
func NextState(food models.Food, prevCount int, hasReaction bool) (models.Status, int) {
	count := prevCount + 1
	switch {
	case hasReaction:
		return models.StatusReaction, count
	case food.IsAllergen:
		if count >= SafeExposures {
			return models.StatusSafe, count
		}
		return models.StatusTrying, count
	default:
		// non-allergens are cleared by a single uneventful exposure
		return models.StatusSafe, 1
	}
}
