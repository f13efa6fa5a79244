package services

import (
	"testing"

	"firstbites/models"

	"github.com/stretchr/testify/assert"
)

func TestNextState(t *testing.T) {
	allergen := models.Food{ID: 30, Name: "Peanut Butter", IsAllergen: true, AllergenFamily: "Peanut"}
	plain := models.Food{ID: 2, Name: "Banana"}

	tests := []struct {
		name       string
		food       models.Food
		prevCount  int
		reaction   bool
		wantStatus models.Status
		wantCount  int
	}{
		{"first allergen exposure", allergen, 0, false, models.StatusTrying, 1},
		{"second allergen exposure", allergen, 1, false, models.StatusTrying, 2},
		{"third allergen exposure", allergen, 2, false, models.StatusSafe, 3},
		{"allergen stays safe", allergen, 5, false, models.StatusSafe, 6},
		{"allergen reaction", allergen, 2, true, models.StatusReaction, 3},
		{"first plain exposure", plain, 0, false, models.StatusSafe, 1},
		{"plain count pinned to one", plain, 4, false, models.StatusSafe, 1},
		{"plain reaction counts up", plain, 4, true, models.StatusReaction, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, count := NextState(tt.food, tt.prevCount, tt.reaction)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestStatusTried(t *testing.T) {
	assert.True(t, models.StatusSafe.Tried())
	assert.True(t, models.StatusTrying.Tried())
	assert.False(t, models.StatusReaction.Tried())
	assert.False(t, models.StatusToTry.Tried())
}
