package clinicalcalc

// BMI categories.
const (
	BMIInvalid     = "Invalid"
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObeseI      = "Obese I"
	BMIObeseII     = "Obese II"
	BMIObeseIII    = "Obese III"
)

// BMI is a body-mass index rounded to one decimal with its category.
type BMI struct {
	Value    float64 `json:"bmi"`
	Category string  `json:"category"`
}

var bmiBands = []struct {
	upper    float64
	category string
}{
	{18.5, BMIUnderweight},
	{25, BMINormal},
	{30, BMIOverweight},
	{35, BMIObeseI},
	{40, BMIObeseII},
}

// CalculateBMI computes BMI from kilograms and inches. Either input <= 0
// yields {0, "Invalid"}. Bands are inclusive below, exclusive above, and are
// applied to the rounded value.
func CalculateBMI(weightKg, heightInches float64) BMI {
	if weightKg <= 0 || heightInches <= 0 {
		return BMI{Value: 0, Category: BMIInvalid}
	}
	m := heightInches * metersPerIn
	bmi := round1(weightKg / (m * m))

	for _, b := range bmiBands {
		if bmi < b.upper {
			return BMI{Value: bmi, Category: b.category}
		}
	}
	return BMI{Value: bmi, Category: BMIObeseIII}
}
