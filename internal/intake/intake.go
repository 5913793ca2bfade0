// Package intake builds the canonical VariableSelection from the two entry
// paths: the manual estimate form and the text-extraction pipeline. Both
// paths funnel through the same schema-driven validation, so an equivalent
// project described either way produces an identical selection -- and
// therefore an identical total. No path-specific behavior is permitted here
// or anywhere downstream.
package intake

import (
	"sort"

	"github.com/groundworks/estimator/model"
)

// FormInput carries the explicit per-category choices of the manual estimate
// form. Empty fields mean "not selected"; the engine applies the category
// default.
type FormInput struct {
	Tearout            string   `json:"tearout,omitempty"`
	Access             string   `json:"access,omitempty"`
	TeamSize           string   `json:"teamSize,omitempty"`
	Cutting            string   `json:"cutting,omitempty"`
	MaterialStyle      string   `json:"materialStyle,omitempty"`
	PatternWaste       string   `json:"patternWaste,omitempty"`
	CuttingWaste       string   `json:"cuttingWaste,omitempty"`
	Equipment          string   `json:"equipment,omitempty"`
	Obstacles          string   `json:"obstacles,omitempty"`
	Complexity         string   `json:"complexity,omitempty"`
	ComplexityOverride *float64 `json:"complexityOverride,omitempty"`
}

// ExtractionInput is the structured output of the upstream text-extraction
// pipeline: category names to option keys, exactly as defined by the
// service's variable schema. The pipeline itself is an external
// collaborator; this package only consumes its output.
type ExtractionInput struct {
	Fields             map[string]string `json:"fields,omitempty"`
	ComplexityOverride *float64          `json:"complexityOverride,omitempty"`
}

// FromForm builds a validated selection from form input.
func FromForm(cfg model.ServiceConfig, in FormInput) (model.VariableSelection, error) {
	fields := map[string]string{
		model.CategoryTearout:       in.Tearout,
		model.CategoryAccess:        in.Access,
		model.CategoryTeamSize:      in.TeamSize,
		model.CategoryCutting:       in.Cutting,
		model.CategoryMaterialStyle: in.MaterialStyle,
		model.CategoryPatternWaste:  in.PatternWaste,
		model.CategoryCuttingWaste:  in.CuttingWaste,
		model.CategoryEquipment:     in.Equipment,
		model.CategoryObstacles:     in.Obstacles,
		model.CategoryComplexity:    in.Complexity,
	}
	return buildSelection(cfg, fields, in.ComplexityOverride)
}

// FromExtraction builds a validated selection from extraction output.
func FromExtraction(cfg model.ServiceConfig, in ExtractionInput) (model.VariableSelection, error) {
	return buildSelection(cfg, in.Fields, in.ComplexityOverride)
}

// buildSelection is the single normalization path shared by both builders.
// Every non-empty field must name a category and option the config defines;
// unknown keys fail rather than default.
func buildSelection(cfg model.ServiceConfig, fields map[string]string, override *float64) (model.VariableSelection, error) {
	sel := model.NewVariableSelection()

	categories := make([]string, 0, len(fields))
	for category := range fields {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		key := fields[category]
		if key == "" {
			continue
		}
		if _, err := cfg.Option(category, key); err != nil {
			return model.VariableSelection{}, err
		}
		sel.Choices[category] = key
	}

	if override != nil {
		v := *override
		sel.ComplexityOverride = &v
	}
	return sel, nil
}
