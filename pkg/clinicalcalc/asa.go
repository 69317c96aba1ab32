package clinicalcalc

var asaDescriptions = map[int]string{
	1: "Normal healthy patient",
	2: "Mild systemic disease",
	3: "Severe systemic disease",
	4: "Severe systemic disease that is a constant threat to life",
	5: "Moribund patient not expected to survive",
}

// ASADescription returns the canonical text for an ASA class, or "" for a
// class outside 1-5.
func ASADescription(asa int) string { return asaDescriptions[asa] }

// ASAResult is an advisory sanity check of an ASA classification. Valid=false
// never blocks entry.
type ASAResult struct {
	Valid          bool   `json:"isValid"`
	Warning        string `json:"warning,omitempty"`
	Recommendation string `json:"recommendation"`
}

// ValidateASAClassification flags classes above 2 for infants and for
// patients with no documented comorbidities.
func ValidateASAClassification(asa, age int, comorbidities []string) ASAResult {
	desc := ASADescription(asa)

	if age < 1 && asa > 2 {
		return ASAResult{Warning: "ASA classification may be too high for infant age", Recommendation: desc}
	}
	if len(comorbidities) == 0 && asa > 2 {
		return ASAResult{Warning: "ASA classification may be too high without documented comorbidities", Recommendation: desc}
	}
	return ASAResult{Valid: true, Recommendation: desc}
}
