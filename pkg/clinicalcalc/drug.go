package clinicalcalc

import (
	"math"

	"github.com/ehr/anesthesia/pkg/clock"
	"github.com/ehr/anesthesia/pkg/fieldcheck"
)

// DefaultDoseUnit is used when a dose is validated without a unit.
const DefaultDoseUnit = "mg"

// ErrInvalidDose is the message returned for a dose that is not a positive
// number.
const ErrInvalidDose = "Invalid dose amount"

// DoseResult is the outcome of ValidateDrugDose. Timestamp is always set.
type DoseResult struct {
	Valid         bool   `json:"isValid"`
	FormattedDose string `json:"formattedDose"`
	Timestamp     string `json:"timestamp"`
	Error         string `json:"error,omitempty"`
}

// ValidateDrugDose parses dose with leading-number semantics and formats a
// log line "HH:MM <dose> <unit>" stamped with the clock's current time.
func ValidateDrugDose(c clock.Clock, _, dose, unit string) DoseResult {
	if c == nil {
		c = clock.System{}
	}
	if unit == "" {
		unit = DefaultDoseUnit
	}
	ts := FormatHHMM(c.Now())

	n, ok := fieldcheck.ParseFloat(dose)
	if !ok || n <= 0 || math.IsInf(n, 0) {
		return DoseResult{Timestamp: ts, Error: ErrInvalidDose}
	}
	return DoseResult{
		Valid:         true,
		FormattedDose: ts + " " + FormatNumber(n) + " " + unit,
		Timestamp:     ts,
	}
}

// DrugAmount is a single administration for the purpose of totals.
type DrugAmount struct {
	Used   bool    `json:"used"`
	Wasted bool    `json:"wasted"`
	Dose   float64 `json:"dose"`
}

// DrugTotals sums used and wasted doses.
type DrugTotals struct {
	TotalUsed      float64 `json:"totalUsed"`
	TotalWasted    float64 `json:"totalWasted"`
	TotalDispensed float64 `json:"totalDispensed"`
}

// CalculateDrugTotals adds an entry's dose to used and/or wasted according to
// its flags; an entry flagged both counts in both.
func CalculateDrugTotals(entries []DrugAmount) DrugTotals {
	var t DrugTotals
	for _, e := range entries {
		if e.Used {
			t.TotalUsed += e.Dose
		}
		if e.Wasted {
			t.TotalWasted += e.Dose
		}
	}
	t.TotalDispensed = t.TotalUsed + t.TotalWasted
	return t
}

// MedicationNameForDose guesses a drug name from a dose and unit typed into
// the intra-op medication box. The first matching range wins.
func MedicationNameForDose(dose float64, unit string) string {
	switch unit {
	case "mg":
		switch {
		case dose >= 0.5 && dose <= 10:
			return "Midazolam"
		case dose >= 10 && dose <= 200:
			return "Propofol"
		}
	case "mcg":
		switch {
		case dose >= 25 && dose <= 200:
			return "Fentanyl"
		case dose >= 0.1 && dose <= 2:
			return "Dexmedetomidine"
		}
	case "units":
		return "Heparin"
	case "g":
		return "Antibiotic"
	}
	return "Medication (" + FormatNumber(dose) + " " + unit + ")"
}
