// Package model defines the domain types shared across the pricing engine:
// service configurations, variable selections, calculation results, and the
// standard error envelope.
package model

import (
	"sort"
	"time"
)

// Base setting group names. Dotted setting paths are "<group>.<name>".
const (
	GroupLabor    = "labor"
	GroupMaterial = "material"
	GroupBusiness = "business"
)

// Required base setting paths. A config missing any of these cannot drive a
// calculation.
const (
	SettingHourlyRate       = "labor.hourlyRate"
	SettingOptimalTeamSize  = "labor.optimalTeamSize"
	SettingBaseProductivity = "labor.baseProductivity"
	SettingHoursPerDay      = "labor.hoursPerDay"
	SettingBaseMaterialCost = "material.baseCostPerUnit"
	SettingProfitMargin     = "business.profitMargin"
)

// EffectKind describes how a variable option's numeric effect is applied.
type EffectKind string

const (
	// EffectPercent adjusts labor hours by a percentage of the running total.
	EffectPercent EffectKind = "percent"
	// EffectHours adds a flat number of labor hours.
	EffectHours EffectKind = "hours"
	// EffectMultiplier scales a base amount (material style, complexity).
	EffectMultiplier EffectKind = "multiplier"
	// EffectDailyRate is a per-day equipment cost, pro-rated by project days.
	EffectDailyRate EffectKind = "dailyRate"
	// EffectFlatCost is a one-time additive cost.
	EffectFlatCost EffectKind = "flatCost"
	// EffectFraction is a fraction of material base cost (waste).
	EffectFraction EffectKind = "fraction"
)

// Setting is a single named numeric configuration value with presentation
// metadata and validation bounds.
type Setting struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Label string  `json:"label,omitempty"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
}

// SettingGroup is a named collection of settings (labor, material, business).
type SettingGroup map[string]Setting

// BaseSettings holds the three groups of base numeric settings for a service.
type BaseSettings struct {
	Labor    SettingGroup `json:"labor"`
	Material SettingGroup `json:"material"`
	Business SettingGroup `json:"business"`
}

// group returns the named group, or nil for an unknown group name.
func (b BaseSettings) group(name string) SettingGroup {
	switch name {
	case GroupLabor:
		return b.Labor
	case GroupMaterial:
		return b.Material
	case GroupBusiness:
		return b.Business
	default:
		return nil
	}
}

// Lookup resolves a dotted "<group>.<setting>" path to its numeric value.
func (b BaseSettings) Lookup(path string) (float64, bool) {
	group, name, ok := splitSettingPath(path)
	if !ok {
		return 0, false
	}
	g := b.group(group)
	if g == nil {
		return 0, false
	}
	s, ok := g[name]
	return s.Value, ok
}

// Require resolves a dotted setting path or fails with MissingBaseSetting.
func (b BaseSettings) Require(path string) (float64, error) {
	v, ok := b.Lookup(path)
	if !ok {
		return 0, NewMissingBaseSettingError(path)
	}
	return v, nil
}

func splitSettingPath(path string) (group, name string, ok bool) {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			if i == 0 || i == len(path)-1 {
				return "", "", false
			}
			return path[:i], path[i+1:], true
		}
	}
	return "", "", false
}

// VariableOption is one selectable choice within a variable category.
type VariableOption struct {
	Label  string  `json:"label"`
	Effect float64 `json:"effect"`
}

// VariableGroup is a named variable category: a set of options, the kind of
// effect they carry, and the option applied when a selection omits the
// category.
type VariableGroup struct {
	Label         string                    `json:"label"`
	Kind          EffectKind                `json:"kind"`
	DefaultOption string                    `json:"defaultOption"`
	Options       map[string]VariableOption `json:"options"`
}

// ServiceConfig is the fully resolved configuration for one service within
// one company: identity, base settings, and variable tables. Configs handed
// out of the cache are read-only snapshots by convention; nothing in the
// calculation path mutates them.
type ServiceConfig struct {
	ServiceID      string                   `json:"serviceId"`
	DisplayName    string                   `json:"displayName"`
	Category       string                   `json:"category"`
	BaseSettings   BaseSettings             `json:"baseSettings"`
	VariableGroups map[string]VariableGroup `json:"variableGroups"`
	UpdatedAt      time.Time                `json:"updatedAt,omitempty"`
	UpdatedBy      string                   `json:"updatedBy,omitempty"`
}

// Group returns the variable group for a category.
func (c ServiceConfig) Group(category string) (VariableGroup, bool) {
	g, ok := c.VariableGroups[category]
	return g, ok
}

// Option resolves the chosen option key within a category. An empty key
// resolves to the category default; an unknown key is rejected.
func (c ServiceConfig) Option(category, key string) (VariableOption, error) {
	g, ok := c.VariableGroups[category]
	if !ok {
		return VariableOption{}, NewUnknownVariableOptionError(category, key)
	}
	if key == "" {
		key = g.DefaultOption
	}
	opt, ok := g.Options[key]
	if !ok {
		return VariableOption{}, NewUnknownVariableOptionError(category, key)
	}
	return opt, nil
}

// Categories returns the config's variable category names in sorted order.
func (c ServiceConfig) Categories() []string {
	names := make([]string, 0, len(c.VariableGroups))
	for name := range c.VariableGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
