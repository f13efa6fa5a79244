package services

import (
	"strings"
)

// Keyword lists for the three introduction stages, matched as lowercase
// substrings of the food name. Earlier stages win when a name matches several.
var (
	stageOneKeywords = []string{
		"avocado", "banana", "sweet potato", "carrot", "butternut", "squash",
		"green pea", "pear", "apple", "oatmeal", "rice cereal", "pumpkin", "zucchini",
	}
	stageTwoKeywords = []string{
		"chicken", "beef", "lentil", "bean", "chickpea", "broccoli", "spinach",
		"mango", "peach", "plum", "quinoa", "prune", "cauliflower", "kale",
	}
	stageThreeKeywords = []string{
		"pasta", "bread", "toast", "blueberr", "strawberr", "raspberr", "turkey",
		"pork", "lamb", "cucumber", "tomato", "corn", "rice", "melon", "kiwi",
	}
)

// foodStage returns 1, 2 or 3 for a staged food and 0 otherwise.
func foodStage(name string) int {
	n := strings.ToLower(name)
	for stage, words := range [][]string{stageOneKeywords, stageTwoKeywords, stageThreeKeywords} {
		for _, w := range words {
			if strings.Contains(n, w) {
				return stage + 1
			}
		}
	}
	return 0
}

// SuggestionScore ranks a food for a baby of the given age in months.
// Younger babies favour early-stage foods; from ten months on, novelty wins.
func SuggestionScore(ageMonths int, name string) int {
	stage := foodStage(name)
	switch {
	case ageMonths < 6:
		if stage == 1 {
			return 100
		}
		return 10
	case ageMonths < 8:
		switch stage {
		case 1:
			return 100
		case 2:
			return 80
		}
		return 30
	case ageMonths < 10:
		switch stage {
		case 1:
			return 90
		case 2:
			return 100
		case 3:
			return 80
		}
		return 50
	default:
		switch stage {
		case 1:
			return 70
		case 2:
			return 80
		case 3:
			return 90
		}
		return 100
	}
}
