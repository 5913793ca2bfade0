// Package configstore persists per-company service configurations and
// exposes the single write path through which every config change flows.
// Reads merge the persisted company document over the built-in service
// template; writes persist atomically and then evict the cache entry before
// the change event is published.
package configstore

import (
	"time"

	"github.com/groundworks/estimator/model"
)

// ConfigDocument is the flat, serializable form of a service config as
// stored by a backend: numeric leaves keyed by dotted "<group>.<setting>"
// paths plus a nested variable-option table. Unknown or missing fields fall
// back to built-in template values on read.
type ConfigDocument struct {
	ServiceID   string                   `json:"serviceId"`
	CompanyID   string                   `json:"companyId"`
	DisplayName string                   `json:"displayName,omitempty"`
	Settings    map[string]float64       `json:"settings,omitempty"`
	Variables   map[string]VariableTable `json:"variables,omitempty"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	UpdatedBy   string                   `json:"updatedBy,omitempty"`
}

// VariableTable is the stored form of one variable category.
type VariableTable struct {
	DefaultOption string                          `json:"defaultOption,omitempty"`
	Options       map[string]model.VariableOption `json:"options,omitempty"`
}

// DocumentFromConfig flattens a resolved ServiceConfig into its stored form.
func DocumentFromConfig(companyID string, cfg model.ServiceConfig) ConfigDocument {
	doc := ConfigDocument{
		ServiceID:   cfg.ServiceID,
		CompanyID:   companyID,
		DisplayName: cfg.DisplayName,
		Settings:    make(map[string]float64),
		Variables:   make(map[string]VariableTable, len(cfg.VariableGroups)),
		UpdatedAt:   cfg.UpdatedAt,
		UpdatedBy:   cfg.UpdatedBy,
	}

	flattenGroup(doc.Settings, model.GroupLabor, cfg.BaseSettings.Labor)
	flattenGroup(doc.Settings, model.GroupMaterial, cfg.BaseSettings.Material)
	flattenGroup(doc.Settings, model.GroupBusiness, cfg.BaseSettings.Business)

	for category, group := range cfg.VariableGroups {
		table := VariableTable{
			DefaultOption: group.DefaultOption,
			Options:       make(map[string]model.VariableOption, len(group.Options)),
		}
		for key, opt := range group.Options {
			table.Options[key] = opt
		}
		doc.Variables[category] = table
	}

	return doc
}

func flattenGroup(dst map[string]float64, name string, group model.SettingGroup) {
	for setting, s := range group {
		dst[name+"."+setting] = s.Value
	}
}

// MergeOverTemplate resolves a stored document against the built-in template
// for its service. Merging is scoped to the same named leaf: a stored value
// only overrides the template setting with the exact same dotted path, and a
// stored variable table only touches the template category with the same
// name. Nothing ever leaks across categories, and document leaves the
// template does not define are dropped.
func MergeOverTemplate(template model.ServiceConfig, doc *ConfigDocument) model.ServiceConfig {
	cfg := cloneConfig(template)
	if doc == nil {
		return cfg
	}

	mergeSettingGroup(cfg.BaseSettings.Labor, model.GroupLabor, doc.Settings)
	mergeSettingGroup(cfg.BaseSettings.Material, model.GroupMaterial, doc.Settings)
	mergeSettingGroup(cfg.BaseSettings.Business, model.GroupBusiness, doc.Settings)

	for category, table := range doc.Variables {
		group, ok := cfg.VariableGroups[category]
		if !ok {
			continue
		}
		for key, opt := range table.Options {
			stored := opt
			if stored.Label == "" {
				if existing, ok := group.Options[key]; ok {
					stored.Label = existing.Label
				}
			}
			group.Options[key] = stored
		}
		if table.DefaultOption != "" {
			if _, ok := group.Options[table.DefaultOption]; ok {
				group.DefaultOption = table.DefaultOption
			}
		}
		cfg.VariableGroups[category] = group
	}

	if doc.DisplayName != "" {
		cfg.DisplayName = doc.DisplayName
	}
	cfg.UpdatedAt = doc.UpdatedAt
	cfg.UpdatedBy = doc.UpdatedBy

	return cfg
}

func mergeSettingGroup(group model.SettingGroup, name string, leaves map[string]float64) {
	prefix := name + "."
	for path, value := range leaves {
		if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
			continue
		}
		setting := path[len(prefix):]
		s, ok := group[setting]
		if !ok {
			continue
		}
		s.Value = value
		group[setting] = s
	}
}

// cloneConfig deep-copies a template so merged results never alias the
// shared built-in maps.
func cloneConfig(cfg model.ServiceConfig) model.ServiceConfig {
	out := cfg
	out.BaseSettings = model.BaseSettings{
		Labor:    cloneSettingGroup(cfg.BaseSettings.Labor),
		Material: cloneSettingGroup(cfg.BaseSettings.Material),
		Business: cloneSettingGroup(cfg.BaseSettings.Business),
	}
	out.VariableGroups = make(map[string]model.VariableGroup, len(cfg.VariableGroups))
	for category, group := range cfg.VariableGroups {
		g := group
		g.Options = make(map[string]model.VariableOption, len(group.Options))
		for key, opt := range group.Options {
			g.Options[key] = opt
		}
		out.VariableGroups[category] = g
	}
	return out
}

func cloneSettingGroup(group model.SettingGroup) model.SettingGroup {
	out := make(model.SettingGroup, len(group))
	for name, s := range group {
		out[name] = s
	}
	return out
}
