package model

import (
	"testing"
)

func testConfig() ServiceConfig {
	return ServiceConfig{
		ServiceID: "paver_patio",
		BaseSettings: BaseSettings{
			Labor: SettingGroup{
				"hourlyRate": {Value: 25, Unit: "$/hour"},
			},
			Business: SettingGroup{
				"profitMargin": {Value: 0.15},
			},
		},
		VariableGroups: map[string]VariableGroup{
			CategoryAccess: {
				Label:         "Site access",
				Kind:          EffectPercent,
				DefaultOption: "easy",
				Options: map[string]VariableOption{
					"easy":     {Label: "Easy access", Effect: 0},
					"moderate": {Label: "Moderate access", Effect: 50},
				},
			},
		},
	}
}

func TestBaseSettings_Lookup(t *testing.T) {
	cfg := testConfig()

	v, ok := cfg.BaseSettings.Lookup("labor.hourlyRate")
	if !ok || v != 25 {
		t.Errorf("Lookup(labor.hourlyRate) = %v, %v", v, ok)
	}
	if _, ok := cfg.BaseSettings.Lookup("labor.unknown"); ok {
		t.Error("Lookup(labor.unknown) should miss")
	}
	if _, ok := cfg.BaseSettings.Lookup("shipping.rate"); ok {
		t.Error("Lookup with unknown group should miss")
	}
	if _, ok := cfg.BaseSettings.Lookup("notdotted"); ok {
		t.Error("Lookup with malformed path should miss")
	}
}

func TestBaseSettings_Require(t *testing.T) {
	cfg := testConfig()

	if _, err := cfg.BaseSettings.Require("business.profitMargin"); err != nil {
		t.Fatalf("Require error: %v", err)
	}

	_, err := cfg.BaseSettings.Require("material.baseCostPerUnit")
	if err == nil {
		t.Fatal("expected missing setting error")
	}
	if CodeOf(err) != ErrMissingBaseSetting {
		t.Errorf("code = %s, want %s", CodeOf(err), ErrMissingBaseSetting)
	}
}

func TestServiceConfig_Option_default(t *testing.T) {
	cfg := testConfig()

	opt, err := cfg.Option(CategoryAccess, "")
	if err != nil {
		t.Fatalf("Option error: %v", err)
	}
	if opt.Label != "Easy access" {
		t.Errorf("default option = %q", opt.Label)
	}
}

func TestServiceConfig_Option_unknownKey(t *testing.T) {
	cfg := testConfig()

	_, err := cfg.Option(CategoryAccess, "helicopter")
	if err == nil {
		t.Fatal("expected unknown option error")
	}
	env, ok := err.(*ErrorEnvelope)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if env.Code != ErrUnknownVariableOption {
		t.Errorf("code = %s", env.Code)
	}
	if len(env.Details) != 1 || env.Details[0].Field != CategoryAccess {
		t.Errorf("details = %+v", env.Details)
	}
}

func TestServiceConfig_Option_unknownCategory(t *testing.T) {
	cfg := testConfig()

	_, err := cfg.Option("landscaping.mulch", "standard")
	if err == nil {
		t.Fatal("expected unknown option error")
	}
	if CodeOf(err) != ErrUnknownVariableOption {
		t.Errorf("code = %s", CodeOf(err))
	}
}

func TestVariableSelection_Clone(t *testing.T) {
	override := 1.2
	sel := NewVariableSelection()
	sel.Choices[CategoryAccess] = "moderate"
	sel.ComplexityOverride = &override

	clone := sel.Clone()
	clone.Choices[CategoryAccess] = "easy"
	*clone.ComplexityOverride = 9

	if sel.Choices[CategoryAccess] != "moderate" {
		t.Error("clone aliases choices map")
	}
	if *sel.ComplexityOverride != 1.2 {
		t.Error("clone aliases complexity override")
	}
}

func TestRenderLines(t *testing.T) {
	got := RenderPercentLine("Moderate access", 50, 28.8)
	if got != "+Moderate access (50%): +28.8 hours" {
		t.Errorf("RenderPercentLine = %q", got)
	}

	got = RenderFlatHoursLine("Moderate cutting", 4)
	if got != "+Moderate cutting: +4 hours" {
		t.Errorf("RenderFlatHoursLine = %q", got)
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != "" {
		t.Error("CodeOf(nil) should be empty")
	}
	if CodeOf(NewInvalidQuantityError(0)) != ErrInvalidQuantity {
		t.Error("CodeOf envelope mismatch")
	}
	if CodeOf(errPlain{}) != ErrInternalError {
		t.Error("CodeOf plain error should be INTERNAL_ERROR")
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "boom" }
