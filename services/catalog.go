package services

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"firstbites/models"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

//go:embed data/foods.yaml
var defaultCatalog []byte

// DefaultCatalog returns the catalog shipped with the binary.
func DefaultCatalog() ([]models.Food, error) {
	return parseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file in the same format as data/foods.yaml.
func LoadCatalog(r io.Reader) ([]models.Food, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseCatalog(raw)
}

type catalogEntry struct {
	models.Food  `yaml:",inline"`
	ServingGuide map[string]string `yaml:"serving_guide"`
}

func parseCatalog(raw []byte) ([]models.Food, error) {
	var doc struct {
		Foods []catalogEntry `yaml:"foods"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[uint]bool, len(doc.Foods))
	foods := make([]models.Food, 0, len(doc.Foods))
	for _, e := range doc.Foods {
		f := e.Food
		if f.ID == 0 || f.Name == "" {
			return nil, &ValidationError{Field: "foods", Reason: fmt.Sprintf("entry %q needs an id and a name", f.Name)}
		}
		if seen[f.ID] {
			return nil, &ValidationError{Field: "foods", Reason: fmt.Sprintf("duplicate id %d", f.ID)}
		}
		seen[f.ID] = true
		if !f.IsAllergen {
			f.AllergenFamily = ""
		}
		if len(e.ServingGuide) > 0 {
			guide, err := json.Marshal(e.ServingGuide)
			if err != nil {
				return nil, err
			}
			f.ServingGuide = datatypes.JSON(guide)
		}
		foods = append(foods, f)
	}
	return foods, nil
}
