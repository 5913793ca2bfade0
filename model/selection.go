package model

// VariableSelection is the canonical input to a calculation: one chosen
// option key per variable category, plus an optional raw complexity
// multiplier override. Both entry paths (manual form and text extraction)
// must build this structure identically; the engine treats it as immutable
// once received.
type VariableSelection struct {
	Choices            map[string]string `json:"choices"`
	ComplexityOverride *float64          `json:"complexityOverride,omitempty"`
}

// NewVariableSelection returns an empty selection ready for choices.
func NewVariableSelection() VariableSelection {
	return VariableSelection{Choices: make(map[string]string)}
}

// Choice returns the selected option key for a category, or "" when the
// category was not selected (the engine then applies the category default).
func (s VariableSelection) Choice(category string) string {
	return s.Choices[category]
}

// Clone returns an independent copy of the selection.
func (s VariableSelection) Clone() VariableSelection {
	out := VariableSelection{Choices: make(map[string]string, len(s.Choices))}
	for k, v := range s.Choices {
		out.Choices[k] = v
	}
	if s.ComplexityOverride != nil {
		v := *s.ComplexityOverride
		out.ComplexityOverride = &v
	}
	return out
}
