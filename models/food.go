package models

import "gorm.io/datatypes"

// A catalog entry. The tracker never mutates foods.
type Food struct {
	ID                 uint           `gorm:"primaryKey" json:"id" yaml:"id"`
	Name               string         `gorm:"size:128;not null;uniqueIndex" json:"name" yaml:"name"`
	Category           string         `gorm:"size:64;index" json:"category" yaml:"category"`
	Emoji              string         `gorm:"size:16" json:"emoji" yaml:"emoji"`
	ImageURL           string         `json:"image_url" yaml:"image_url"`
	IsAllergen         bool           `gorm:"index" json:"is_allergen" yaml:"is_allergen"`
	AllergenFamily     string         `gorm:"size:64;index" json:"allergen_family,omitempty" yaml:"allergen_family"`
	ServingGuide       datatypes.JSON `json:"serving_guide,omitempty" yaml:"-"`
	ChokingHazardLevel string         `gorm:"size:16" json:"choking_hazard_level,omitempty" yaml:"choking_hazard_level"`
}
