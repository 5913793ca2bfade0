package model

import (
	"fmt"
	"strconv"
)

// AdjustmentLine records one Tier-1 labor adjustment: the category that
// produced it, the hours it added to the running total, and a rendered
// human-readable breakdown line.
type AdjustmentLine struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Percent  float64 `json:"percent,omitempty"`
	Hours    float64 `json:"hours"`
	Line     string  `json:"line"`
}

// RenderPercentLine renders the breakdown line for a percentage-of-running-
// total adjustment: "+<Label> (<percent>%): +<hours> hours".
func RenderPercentLine(label string, percent, hours float64) string {
	return fmt.Sprintf("+%s (%s%%): +%s hours",
		label, trimFloat(percent), trimFloat(hours))
}

// RenderFlatHoursLine renders the breakdown line for a flat-hour add-on:
// "+<Label>: +<hours> hours".
func RenderFlatHoursLine(label string, hours float64) string {
	return fmt.Sprintf("+%s: +%s hours", label, trimFloat(hours))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LaborBreakdown is the Tier-1 output: base hours, the sequential
// adjustments in application order, and the final running total.
type LaborBreakdown struct {
	BaseHours     float64          `json:"baseHours"`
	Adjustments   []AdjustmentLine `json:"adjustments"`
	TotalManHours float64          `json:"totalManHours"`
}

// CostBreakdown is the Tier-2 output.
type CostBreakdown struct {
	LaborCost            float64 `json:"laborCost"`
	MaterialBaseCost     float64 `json:"materialBaseCost"`
	MaterialWasteCost    float64 `json:"materialWasteCost"`
	TotalMaterialCost    float64 `json:"totalMaterialCost"`
	EquipmentCost        float64 `json:"equipmentCost"`
	ObstacleCost         float64 `json:"obstacleCost"`
	Subtotal             float64 `json:"subtotal"`
	ProfitMargin         float64 `json:"profitMargin"`
	Profit               float64 `json:"profit"`
	ComplexityMultiplier float64 `json:"complexityMultiplier"`
	Total                float64 `json:"total"`
	PricePerUnit         float64 `json:"pricePerUnit"`
}

// CalculationResult is the immutable output of one calculation. Results are
// never cached; only configs are, so a result always reflects the config it
// was computed from.
type CalculationResult struct {
	ServiceID string         `json:"serviceId"`
	Quantity  float64        `json:"quantity"`
	Labor     LaborBreakdown `json:"labor"`
	Cost      CostBreakdown  `json:"cost"`
}
