// Package engine implements the two-tier pricing calculation: labor hours
// first (Tier 1), then cost (Tier 2). Calculate is pure and synchronous; it
// performs no I/O and callers must supply a fully resolved config.
package engine

import (
	"sort"

	"github.com/groundworks/estimator/model"
)

// Calculate turns (config, selection, quantity) into a deterministic
// result. Repeated calls with equal inputs return bit-identical output.
//
// Tier 1 applies percentage adjustments sequentially against the running
// hours total in the order model.LaborPercentOrder, then flat-hour add-ons
// in model.LaborFlatHourOrder. Tier 2 derives labor, material, equipment,
// and obstacle costs, applies profit, then the complexity multiplier.
func Calculate(cfg model.ServiceConfig, sel model.VariableSelection, quantity float64) (model.CalculationResult, error) {
	if quantity <= 0 {
		return model.CalculationResult{}, model.NewInvalidQuantityError(quantity)
	}
	if err := validateSelection(cfg, sel); err != nil {
		return model.CalculationResult{}, err
	}

	labor, err := laborHours(cfg, sel, quantity)
	if err != nil {
		return model.CalculationResult{}, err
	}

	cost, err := costs(cfg, sel, quantity, labor.TotalManHours)
	if err != nil {
		return model.CalculationResult{}, err
	}

	return model.CalculationResult{
		ServiceID: cfg.ServiceID,
		Quantity:  quantity,
		Labor:     labor,
		Cost:      cost,
	}, nil
}

// validateSelection rejects any choice naming a category or option the
// config does not define. Unknown keys are never defaulted: silent defaults
// would let the two entry paths diverge on the same input.
func validateSelection(cfg model.ServiceConfig, sel model.VariableSelection) error {
	for _, category := range sortedChoiceCategories(sel) {
		if _, err := cfg.Option(category, sel.Choices[category]); err != nil {
			return err
		}
	}
	return nil
}

func sortedChoiceCategories(sel model.VariableSelection) []string {
	names := make([]string, 0, len(sel.Choices))
	for name := range sel.Choices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// laborHours computes Tier 1.
func laborHours(cfg model.ServiceConfig, sel model.VariableSelection, quantity float64) (model.LaborBreakdown, error) {
	productivity, err := cfg.BaseSettings.Require(model.SettingBaseProductivity)
	if err != nil {
		return model.LaborBreakdown{}, err
	}
	teamSize, err := cfg.BaseSettings.Require(model.SettingOptimalTeamSize)
	if err != nil {
		return model.LaborBreakdown{}, err
	}
	hoursPerDay, err := cfg.BaseSettings.Require(model.SettingHoursPerDay)
	if err != nil {
		return model.LaborBreakdown{}, err
	}
	if productivity <= 0 {
		return model.LaborBreakdown{}, model.NewMissingBaseSettingError(model.SettingBaseProductivity)
	}

	baseHours := quantity / productivity * teamSize * hoursPerDay
	running := baseHours
	var adjustments []model.AdjustmentLine

	for _, category := range model.LaborPercentOrder {
		group, ok := cfg.Group(category)
		if !ok {
			continue
		}
		opt, err := cfg.Option(category, sel.Choice(category))
		if err != nil {
			return model.LaborBreakdown{}, err
		}
		increment := running * opt.Effect / 100
		running += increment
		adjustments = append(adjustments, model.AdjustmentLine{
			Category: category,
			Label:    optionLabel(group, opt),
			Percent:  opt.Effect,
			Hours:    increment,
			Line:     model.RenderPercentLine(optionLabel(group, opt), opt.Effect, increment),
		})
	}

	for _, category := range model.LaborFlatHourOrder {
		group, ok := cfg.Group(category)
		if !ok {
			continue
		}
		opt, err := cfg.Option(category, sel.Choice(category))
		if err != nil {
			return model.LaborBreakdown{}, err
		}
		running += opt.Effect
		adjustments = append(adjustments, model.AdjustmentLine{
			Category: category,
			Label:    optionLabel(group, opt),
			Hours:    opt.Effect,
			Line:     model.RenderFlatHoursLine(optionLabel(group, opt), opt.Effect),
		})
	}

	return model.LaborBreakdown{
		BaseHours:     baseHours,
		Adjustments:   adjustments,
		TotalManHours: running,
	}, nil
}

// costs computes Tier 2 from the Tier-1 man-hour total.
func costs(cfg model.ServiceConfig, sel model.VariableSelection, quantity, totalManHours float64) (model.CostBreakdown, error) {
	hourlyRate, err := cfg.BaseSettings.Require(model.SettingHourlyRate)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	baseMaterialCost, err := cfg.BaseSettings.Require(model.SettingBaseMaterialCost)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	profitMargin, err := cfg.BaseSettings.Require(model.SettingProfitMargin)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	teamSize, err := cfg.BaseSettings.Require(model.SettingOptimalTeamSize)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	hoursPerDay, err := cfg.BaseSettings.Require(model.SettingHoursPerDay)
	if err != nil {
		return model.CostBreakdown{}, err
	}

	laborCost := totalManHours * hourlyRate

	styleMultiplier := 1.0
	if _, ok := cfg.Group(model.CategoryMaterialStyle); ok {
		opt, err := cfg.Option(model.CategoryMaterialStyle, sel.Choice(model.CategoryMaterialStyle))
		if err != nil {
			return model.CostBreakdown{}, err
		}
		styleMultiplier = opt.Effect
	}
	materialBase := quantity * baseMaterialCost * styleMultiplier

	// Waste fractions sum additively against the material base, per the
	// documented product behavior. Compounding them multiplicatively would
	// change totals for combined pattern+cutting waste.
	wasteFraction := 0.0
	for _, category := range model.WasteOrder {
		if _, ok := cfg.Group(category); !ok {
			continue
		}
		opt, err := cfg.Option(category, sel.Choice(category))
		if err != nil {
			return model.CostBreakdown{}, err
		}
		wasteFraction += opt.Effect
	}
	wasteCost := materialBase * wasteFraction
	totalMaterialCost := materialBase + wasteCost

	// Equipment is pro-rated over the project's duration, not charged flat.
	equipmentCost := 0.0
	if _, ok := cfg.Group(model.CategoryEquipment); ok {
		opt, err := cfg.Option(model.CategoryEquipment, sel.Choice(model.CategoryEquipment))
		if err != nil {
			return model.CostBreakdown{}, err
		}
		projectDays := totalManHours / (teamSize * hoursPerDay)
		equipmentCost = opt.Effect * projectDays
	}

	obstacleCost := 0.0
	if _, ok := cfg.Group(model.CategoryObstacles); ok {
		opt, err := cfg.Option(model.CategoryObstacles, sel.Choice(model.CategoryObstacles))
		if err != nil {
			return model.CostBreakdown{}, err
		}
		obstacleCost = opt.Effect
	}

	complexity := 1.0
	if sel.ComplexityOverride != nil {
		complexity = *sel.ComplexityOverride
	} else if _, ok := cfg.Group(model.CategoryComplexity); ok {
		opt, err := cfg.Option(model.CategoryComplexity, sel.Choice(model.CategoryComplexity))
		if err != nil {
			return model.CostBreakdown{}, err
		}
		complexity = opt.Effect
	}

	subtotal := laborCost + totalMaterialCost + equipmentCost + obstacleCost
	profit := subtotal * profitMargin
	total := (subtotal + profit) * complexity

	return model.CostBreakdown{
		LaborCost:            laborCost,
		MaterialBaseCost:     materialBase,
		MaterialWasteCost:    wasteCost,
		TotalMaterialCost:    totalMaterialCost,
		EquipmentCost:        equipmentCost,
		ObstacleCost:         obstacleCost,
		Subtotal:             subtotal,
		ProfitMargin:         profitMargin,
		Profit:               profit,
		ComplexityMultiplier: complexity,
		Total:                total,
		PricePerUnit:         total / quantity,
	}, nil
}

func optionLabel(group model.VariableGroup, opt model.VariableOption) string {
	if opt.Label != "" {
		return opt.Label
	}
	return group.Label
}
