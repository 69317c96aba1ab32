package clinicalcalc

import "fmt"

// Procedure types with a fasting policy.
const (
	NPOClearLiquids = "clear_liquids"
	NPOLightMeal    = "light_meal"
	NPOHeavyMeal    = "heavy_meal"
	NPOGeneral      = "general"
)

// NPOPolicy is the recommended fasting window in hours.
type NPOPolicy struct {
	Min  float64
	Max  float64
	Text string
}

var npoPolicies = map[string]NPOPolicy{
	NPOClearLiquids: {Min: 2, Max: 4, Text: "Clear liquids: 2-4 hours"},
	NPOLightMeal:    {Min: 6, Max: 8, Text: "Light meal: 6-8 hours"},
	NPOHeavyMeal:    {Min: 8, Max: 12, Text: "Heavy meal: 8-12 hours"},
	NPOGeneral:      {Min: 6, Max: 8, Text: "General: 6-8 hours"},
}

// NPOPolicyFor returns the policy for procedureType, falling back to general.
func NPOPolicyFor(procedureType string) NPOPolicy {
	if p, ok := npoPolicies[procedureType]; ok {
		return p
	}
	return npoPolicies[NPOGeneral]
}

// NPOResult is the advisory outcome of ValidateNPO.
type NPOResult struct {
	Valid          bool   `json:"isValid"`
	Warning        string `json:"warning,omitempty"`
	Recommendation string `json:"recommendation"`
}

// ValidateNPO checks fasting hours against the policy for procedureType.
// Fasting below the minimum is invalid; above the maximum is valid with a
// warning.
func ValidateNPO(npoHours float64, procedureType string) NPOResult {
	p := NPOPolicyFor(procedureType)

	switch {
	case npoHours < p.Min:
		return NPOResult{
			Valid:          false,
			Warning:        fmt.Sprintf("NPO time (%sh) is less than recommended minimum (%sh)", FormatNumber(npoHours), FormatNumber(p.Min)),
			Recommendation: p.Text,
		}
	case npoHours > p.Max:
		return NPOResult{
			Valid:          true,
			Warning:        fmt.Sprintf("NPO time (%sh) exceeds recommended maximum (%sh)", FormatNumber(npoHours), FormatNumber(p.Max)),
			Recommendation: p.Text,
		}
	}
	return NPOResult{Valid: true, Recommendation: p.Text}
}
