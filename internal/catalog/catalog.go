// Package catalog holds the built-in service templates. A company with no
// persisted configuration for a service is priced off the template; persisted
// company documents are merged over it leaf-by-leaf in the config store.
package catalog

import (
	"github.com/groundworks/estimator/model"
)

// Known built-in service IDs.
const (
	ServicePaverPatio = "paver_patio"
	ServiceExcavation = "excavation"
)

// Template returns the built-in ServiceConfig for a service ID.
func Template(serviceID string) (model.ServiceConfig, bool) {
	switch serviceID {
	case ServicePaverPatio:
		return paverPatioTemplate(), true
	case ServiceExcavation:
		return excavationTemplate(), true
	default:
		return model.ServiceConfig{}, false
	}
}

// ServiceIDs returns the built-in service IDs.
func ServiceIDs() []string {
	return []string{ServicePaverPatio, ServiceExcavation}
}

func paverPatioTemplate() model.ServiceConfig {
	return model.ServiceConfig{
		ServiceID:   ServicePaverPatio,
		DisplayName: "Paver Patio",
		Category:    "hardscape",
		BaseSettings: model.BaseSettings{
			Labor: model.SettingGroup{
				"hourlyRate":       {Value: 25, Unit: "$/hour", Label: "Hourly rate", Min: 10, Max: 150},
				"optimalTeamSize":  {Value: 3, Unit: "people", Label: "Optimal team size", Min: 1, Max: 12},
				"baseProductivity": {Value: 50, Unit: "sqft/day", Label: "Base productivity", Min: 1, Max: 2000},
				"hoursPerDay":      {Value: 8, Unit: "hours", Label: "Working hours per day", Min: 1, Max: 16},
			},
			Material: model.SettingGroup{
				"baseCostPerUnit": {Value: 5.84, Unit: "$/sqft", Label: "Base material cost", Min: 0, Max: 100},
			},
			Business: model.SettingGroup{
				"profitMargin": {Value: 0.15, Unit: "fraction", Label: "Profit margin", Min: 0, Max: 1},
			},
		},
		VariableGroups: map[string]model.VariableGroup{
			model.CategoryTearout: {
				Label:         "Tear-out",
				Kind:          model.EffectPercent,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":     {Label: "No tear-out", Effect: 0},
					"turf":     {Label: "Turf removal", Effect: 10},
					"gravel":   {Label: "Gravel removal", Effect: 15},
					"concrete": {Label: "Concrete removal", Effect: 20},
				},
			},
			model.CategoryAccess: {
				Label:         "Site access",
				Kind:          model.EffectPercent,
				DefaultOption: "easy",
				Options: map[string]model.VariableOption{
					"easy":      {Label: "Easy access", Effect: 0},
					"moderate":  {Label: "Moderate access", Effect: 50},
					"difficult": {Label: "Difficult access", Effect: 75},
				},
			},
			model.CategoryTeamSize: {
				Label:         "Team size",
				Kind:          model.EffectPercent,
				DefaultOption: "threePlus",
				Options: map[string]model.VariableOption{
					"twoPerson": {Label: "Two-person crew", Effect: 15},
					"threePlus": {Label: "Full crew", Effect: 0},
				},
			},
			model.CategoryCutting: {
				Label:         "Cutting complexity",
				Kind:          model.EffectHours,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":      {Label: "No cutting", Effect: 0},
					"minimal":   {Label: "Minimal cutting", Effect: 2},
					"moderate":  {Label: "Moderate cutting", Effect: 4},
					"extensive": {Label: "Extensive cutting", Effect: 8},
				},
			},
			model.CategoryMaterialStyle: {
				Label:         "Material style",
				Kind:          model.EffectMultiplier,
				DefaultOption: "standard",
				Options: map[string]model.VariableOption{
					"standard":     {Label: "Standard pavers", Effect: 1.0},
					"premium":      {Label: "Premium pavers", Effect: 1.25},
					"naturalStone": {Label: "Natural stone", Effect: 1.5},
				},
			},
			model.CategoryPatternWaste: {
				Label:         "Pattern waste",
				Kind:          model.EffectFraction,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":        {Label: "Running bond", Effect: 0},
					"simple":      {Label: "Simple pattern", Effect: 0.05},
					"herringbone": {Label: "Herringbone", Effect: 0.10},
					"complex":     {Label: "Complex pattern", Effect: 0.15},
				},
			},
			model.CategoryCuttingWaste: {
				Label:         "Cutting waste",
				Kind:          model.EffectFraction,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":     {Label: "No cuts", Effect: 0},
					"straight": {Label: "Straight cuts", Effect: 0.03},
					"curved":   {Label: "Curved cuts", Effect: 0.08},
				},
			},
			model.CategoryEquipment: {
				Label:         "Equipment",
				Kind:          model.EffectDailyRate,
				DefaultOption: "handTools",
				Options: map[string]model.VariableOption{
					"handTools":     {Label: "Hand tools", Effect: 0},
					"plateCompactor": {Label: "Plate compactor", Effect: 85},
					"skidSteer":     {Label: "Skid steer", Effect: 250},
				},
			},
			model.CategoryObstacles: {
				Label:         "Obstacle removal",
				Kind:          model.EffectFlatCost,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":     {Label: "No obstacles", Effect: 0},
					"minor":    {Label: "Minor obstacles", Effect: 150},
					"moderate": {Label: "Moderate obstacles", Effect: 450},
					"major":    {Label: "Major obstacles", Effect: 900},
				},
			},
			model.CategoryComplexity: {
				Label:         "Project complexity",
				Kind:          model.EffectMultiplier,
				DefaultOption: "standard",
				Options: map[string]model.VariableOption{
					"simple":   {Label: "Simple", Effect: 1.0},
					"standard": {Label: "Standard", Effect: 1.1},
					"complex":  {Label: "Complex", Effect: 1.25},
					"extreme":  {Label: "Extreme", Effect: 1.5},
				},
			},
		},
	}
}

func excavationTemplate() model.ServiceConfig {
	return model.ServiceConfig{
		ServiceID:   ServiceExcavation,
		DisplayName: "Excavation",
		Category:    "sitework",
		BaseSettings: model.BaseSettings{
			Labor: model.SettingGroup{
				"hourlyRate":       {Value: 35, Unit: "$/hour", Label: "Hourly rate", Min: 10, Max: 200},
				"optimalTeamSize":  {Value: 2, Unit: "people", Label: "Optimal team size", Min: 1, Max: 8},
				"baseProductivity": {Value: 80, Unit: "sqft/day", Label: "Base productivity", Min: 1, Max: 5000},
				"hoursPerDay":      {Value: 8, Unit: "hours", Label: "Working hours per day", Min: 1, Max: 16},
			},
			Material: model.SettingGroup{
				"baseCostPerUnit": {Value: 0.75, Unit: "$/sqft", Label: "Disposal cost", Min: 0, Max: 50},
			},
			Business: model.SettingGroup{
				"profitMargin": {Value: 0.2, Unit: "fraction", Label: "Profit margin", Min: 0, Max: 1},
			},
		},
		VariableGroups: map[string]model.VariableGroup{
			model.CategoryTearout: {
				Label:         "Tear-out",
				Kind:          model.EffectPercent,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":     {Label: "No tear-out", Effect: 0},
					"turf":     {Label: "Turf removal", Effect: 10},
					"concrete": {Label: "Concrete removal", Effect: 25},
				},
			},
			model.CategoryAccess: {
				Label:         "Site access",
				Kind:          model.EffectPercent,
				DefaultOption: "easy",
				Options: map[string]model.VariableOption{
					"easy":      {Label: "Easy access", Effect: 0},
					"moderate":  {Label: "Moderate access", Effect: 40},
					"difficult": {Label: "Difficult access", Effect: 70},
				},
			},
			model.CategoryEquipment: {
				Label:         "Equipment",
				Kind:          model.EffectDailyRate,
				DefaultOption: "miniExcavator",
				Options: map[string]model.VariableOption{
					"handTools":     {Label: "Hand tools", Effect: 0},
					"miniExcavator": {Label: "Mini excavator", Effect: 350},
					"fullExcavator": {Label: "Full-size excavator", Effect: 600},
				},
			},
			model.CategoryObstacles: {
				Label:         "Obstacle removal",
				Kind:          model.EffectFlatCost,
				DefaultOption: "none",
				Options: map[string]model.VariableOption{
					"none":  {Label: "No obstacles", Effect: 0},
					"roots": {Label: "Root systems", Effect: 300},
					"rock":  {Label: "Rock removal", Effect: 1200},
				},
			},
			model.CategoryComplexity: {
				Label:         "Project complexity",
				Kind:          model.EffectMultiplier,
				DefaultOption: "standard",
				Options: map[string]model.VariableOption{
					"simple":   {Label: "Simple", Effect: 1.0},
					"standard": {Label: "Standard", Effect: 1.1},
					"complex":  {Label: "Complex", Effect: 1.25},
					"extreme":  {Label: "Extreme", Effect: 1.5},
				},
			},
		},
	}
}
