package clinicalcalc

// AldreteScores are the six recovery components summed into an Aldrete total.
type AldreteScores struct {
	Vitals        int `json:"vitals"`
	Ambulation    int `json:"ambulation"`
	NV            int `json:"nv"`
	Pain          int `json:"pain"`
	Consciousness int `json:"consciousness"`
	Color         int `json:"color"`
}

// AldreteResult is the total with a discharge recommendation.
type AldreteResult struct {
	Total             int    `json:"total"`
	ReadyForDischarge bool   `json:"isReadyForDischarge"`
	Recommendation    string `json:"recommendation"`
}

// Aldrete thresholds.
const (
	AldreteDischargeMin = 8
	AldreteMonitorMin   = 6
)

// CalculateAldreteScore sums the components. Values are not range-checked.
func CalculateAldreteScore(s AldreteScores) AldreteResult {
	total := s.Vitals + s.Ambulation + s.NV + s.Pain + s.Consciousness + s.Color

	switch {
	case total >= AldreteDischargeMin:
		return AldreteResult{Total: total, ReadyForDischarge: true, Recommendation: "Patient ready for discharge"}
	case total >= AldreteMonitorMin:
		return AldreteResult{Total: total, Recommendation: "Monitor closely, may be ready soon"}
	}
	return AldreteResult{Total: total, Recommendation: "Patient not ready for discharge"}
}
