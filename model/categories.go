package model

// Canonical variable category names. Category identifiers are dotted
// "<area>.<aspect>" paths; error messages and breakdown lines refer to them
// by these exact names.
const (
	CategoryTearout       = "excavation.tearoutComplexity"
	CategoryAccess        = "siteAccess.difficulty"
	CategoryTeamSize      = "labor.teamSize"
	CategoryCutting       = "excavation.cuttingComplexity"
	CategoryMaterialStyle = "materials.style"
	CategoryPatternWaste  = "materials.patternWaste"
	CategoryCuttingWaste  = "materials.cuttingWaste"
	CategoryEquipment     = "equipment.machine"
	CategoryObstacles     = "site.obstacles"
	CategoryComplexity    = "project.complexity"
)

// LaborPercentOrder is the fixed application order of Tier-1
// percentage-of-running-total adjustments. Percentage composition against a
// running total is not commutative, so this order is part of the contract.
var LaborPercentOrder = []string{
	CategoryTearout,
	CategoryAccess,
	CategoryTeamSize,
}

// LaborFlatHourOrder is the fixed order of Tier-1 flat-hour add-ons, applied
// after all percentage adjustments.
var LaborFlatHourOrder = []string{
	CategoryCutting,
}

// WasteOrder lists the waste categories whose fractions are summed
// additively against material base cost.
var WasteOrder = []string{
	CategoryPatternWaste,
	CategoryCuttingWaste,
}
