// Package clinicalcalc holds the derivation rules of the anesthesia record:
// unit conversion, BMI, age, NPO and ASA checks, drug dose and totals, and
// recovery scoring. Everything here is deterministic; functions that need the
// current time take it (or a clock) as an argument.
package clinicalcalc

import (
	"math"
	"strconv"
)

// WeightUnit is the unit a weight was entered in.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lbs"
)

const (
	lbsPerKg    = 2.20462
	metersPerIn = 0.0254
	cmPerInch   = 2.54
	inchesPerFt = 12
)

// KgToLbs converts and rounds to one decimal place.
func KgToLbs(kg float64) float64 { return round1(kg * lbsPerKg) }

// LbsToKg converts and rounds to one decimal place.
func LbsToKg(lbs float64) float64 { return round1(lbs / lbsPerKg) }

// KgToWholeLbs converts kilograms to pounds rounded to the nearest pound, the
// precision the pounds field displays.
func KgToWholeLbs(kg float64) float64 { return roundHalfUp(kg * lbsPerKg) }

// ConvertWeight converts value between kg and lbs. Equal units return value
// unchanged. Non-finite input is passed through the arithmetic as is.
func ConvertWeight(value float64, from, to WeightUnit) float64 {
	if from == to {
		return value
	}
	if from == Kilograms {
		return KgToLbs(value)
	}
	return LbsToKg(value)
}

// InchesFromCM converts a centimetre height to inches without rounding.
func InchesFromCM(cm float64) float64 { return cm / cmPerInch }

// FeetInches splits a height in inches into whole feet and remaining inches,
// rounding the total to the nearest inch first.
func FeetInches(totalInches float64) (feet, inches int) {
	total := int(roundHalfUp(totalInches))
	return total / inchesPerFt, total % inchesPerFt
}

// RoundHalfUp rounds to the nearest integer with halves going towards
// positive infinity.
func RoundHalfUp(x float64) float64 { return roundHalfUp(x) }

// Round1 rounds to one decimal place, halves up.
func Round1(x float64) float64 { return round1(x) }

func roundHalfUp(x float64) float64 { return math.Floor(x + 0.5) }

func round1(x float64) float64 { return math.Floor(x*10+0.5) / 10 }

// FormatNumber renders f the shortest way that round-trips, without an
// exponent for ordinary clinical magnitudes ("4", "4.5", "0.25").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
