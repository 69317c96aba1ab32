package anesthesia

import (
	"time"

	"github.com/ehr/anesthesia/pkg/clinicalcalc"
	"github.com/ehr/anesthesia/pkg/fieldcheck"
)

// Advisory is a non-blocking message attached to a field.
type Advisory struct {
	Field    string              `json:"field"`
	Severity fieldcheck.Severity `json:"severity"`
	Message  string              `json:"message"`
}

// Derived holds every value computed from a record's raw inputs.
type Derived struct {
	Age         int     `json:"age"`
	AgeInMonths int     `json:"ageInMonths"`
	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmiCategory"`

	NPO clinicalcalc.NPOResult `json:"npo"`
	ASA clinicalcalc.ASAResult `json:"asa"`

	ChecklistCompletion ChecklistCompletion `json:"checklistCompletion"`

	DrugTotals       clinicalcalc.DrugTotals `json:"drugTotals"`
	MedicationTotals []MedicationTotal       `json:"medicationTotals"`
	MedicationLines  []MedicationLine        `json:"medicationLines"`
	LocalAnesthetics []LocalAnestheticLine   `json:"localAnesthetics"`
	Consciousness    []ConsciousnessLine     `json:"consciousness"`

	DischargeTotal int `json:"dischargeTotal"`

	Advisories []Advisory `json:"advisories"`
}

type ChecklistCompletion struct {
	PreOpChecklist  int `json:"preOpChecklist"`
	PreOpAssessment int `json:"preOpAssessment"`
	Monitoring      int `json:"monitoring"`
}

// MedicationTotal aggregates quick-entry medications by inferred name and
// unit.
type MedicationTotal struct {
	Medication string  `json:"medication"`
	Unit       string  `json:"unit"`
	Used       float64 `json:"used"`
	Wasted     float64 `json:"wasted"`
	GrandTotal float64 `json:"grandTotal"`
}

type MedicationLine struct {
	ID         string  `json:"id"`
	Medication string  `json:"medication"`
	Total      float64 `json:"total"`
}

type LocalAnestheticLine struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	TotalVolume float64 `json:"totalVolume"`
}

type ConsciousnessLine struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Response    string `json:"response"`
}

// Age is the patient's age on now's calendar date.
func (p PatientInfo) Age(now time.Time) clinicalcalc.Age {
	return clinicalcalc.CalculateAge(p.DOB, now)
}

func (p PatientInfo) BMI() clinicalcalc.BMI {
	return clinicalcalc.CalculateBMI(p.Weight, p.Height)
}

// Amounts parses the typed used and wasted amounts; an empty or
// non-numeric amount counts as zero.
func (m MedicationEntry) Amounts() (used, wasted float64) {
	used, _ = fieldcheck.ParseFloat(orZero(m.Used))
	wasted, _ = fieldcheck.ParseFloat(orZero(m.Wasted))
	return used, wasted
}

// Total is used plus wasted.
func (m MedicationEntry) Total() float64 {
	u, w := m.Amounts()
	return u + w
}

func (m MedicationEntry) Medication() string {
	return clinicalcalc.MedicationNameForDose(m.Dose, m.Unit)
}

func (l LocalAnestheticEntry) TotalVolume() float64 {
	return clinicalcalc.TotalVolume(clinicalcalc.LocalAnestheticType(l.Type), l.Carpules)
}

func (l LocalAnestheticEntry) DisplayName() string {
	return clinicalcalc.LocalAnestheticDisplayName(clinicalcalc.LocalAnestheticType(l.Type), l.Concentration, l.Epinephrine)
}

// CompletionPercent is round(100 × checked / total); an empty list is 0.
func CompletionPercent(items []bool) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, ok := range items {
		if ok {
			done++
		}
	}
	return int(clinicalcalc.RoundHalfUp(float64(done) * 100 / float64(len(items))))
}

// MedicationTotals groups entries by inferred medication name and unit in
// order of first appearance.
func MedicationTotals(entries []MedicationEntry) []MedicationTotal {
	out := []MedicationTotal{}
	index := map[string]int{}
	for _, e := range entries {
		name := e.Medication()
		key := name + "_" + e.Unit
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MedicationTotal{Medication: name, Unit: e.Unit})
		}
		u, w := e.Amounts()
		out[i].Used += u
		out[i].Wasted += w
		out[i].GrandTotal += u + w
	}
	return out
}

// DrugLogTotals totals the generic drug log. Doses that do not parse count
// as zero.
func DrugLogTotals(entries []DrugLogEntry) clinicalcalc.DrugTotals {
	amounts := make([]clinicalcalc.DrugAmount, 0, len(entries))
	for _, e := range entries {
		dose, _ := fieldcheck.ParseFloat(e.Dose)
		amounts = append(amounts, clinicalcalc.DrugAmount{Used: e.Used, Wasted: e.Wasted, Dose: dose})
	}
	return clinicalcalc.CalculateDrugTotals(amounts)
}

// Comorbidities lists the documented risk factors used by the ASA check.
func (r *Record) Comorbidities() []string {
	var out []string
	mr := r.MedicalReview
	if mr.DiabeticMedication {
		out = append(out, "diabetic medication")
	}
	if mr.Anticoagulant {
		out = append(out, "anticoagulant")
	}
	if mr.Immunosuppressive {
		out = append(out, "immunosuppressive")
	}
	if mr.Bisphosphonates {
		out = append(out, "bisphosphonates")
	}
	if r.PreOpAssessment.HighRiskPatient == Yes {
		out = append(out, "high risk patient")
	}
	return out
}

var bmiASAConsiderations = map[string]string{
	clinicalcalc.BMIUnderweight: "Consider ASA II for severe malnutrition",
	clinicalcalc.BMIOverweight:  "Consider ASA II if associated comorbidities",
	clinicalcalc.BMIObeseI:      "Consider ASA II-III for obesity-related comorbidities",
	clinicalcalc.BMIObeseII:     "Consider ASA III for significant obesity-related comorbidities",
	clinicalcalc.BMIObeseIII:    "Consider ASA III-IV for severe obesity with comorbidities",
}

// Derive computes all derived values of r as of now.
func Derive(r *Record, now time.Time) Derived {
	age := r.Patient.Age(now)
	bmi := r.Patient.BMI()

	d := Derived{
		Age:         age.Years,
		AgeInMonths: age.Months,
		BMI:         bmi.Value,
		BMICategory: bmi.Category,
		NPO:         clinicalcalc.ValidateNPO(r.PreOpAssessment.NPOHours, clinicalcalc.NPOGeneral),
		ASA:         clinicalcalc.ValidateASAClassification(r.PreOpAssessment.ASA, age.Years, r.Comorbidities()),
		ChecklistCompletion: ChecklistCompletion{
			PreOpChecklist:  CompletionPercent(r.PreOpChecklist.Checklist()),
			PreOpAssessment: CompletionPercent(r.PreOpAssessment.Checklist()),
			Monitoring:      CompletionPercent(r.Monitoring.Checklist()),
		},
		DrugTotals:       DrugLogTotals(r.Medications.LoggedDrugs),
		MedicationTotals: MedicationTotals(r.IntraOpTracker.Medications),
		MedicationLines:  []MedicationLine{},
		LocalAnesthetics: []LocalAnestheticLine{},
		Consciousness:    []ConsciousnessLine{},
		DischargeTotal:   r.DischargeScore.Total(),
		Advisories:       []Advisory{},
	}

	for _, m := range r.IntraOpTracker.Medications {
		d.MedicationLines = append(d.MedicationLines, MedicationLine{ID: m.ID, Medication: m.Medication(), Total: m.Total()})
	}
	for _, l := range r.IntraOpTracker.LocalAnesthetics {
		d.LocalAnesthetics = append(d.LocalAnesthetics, LocalAnestheticLine{ID: l.ID, DisplayName: l.DisplayName(), TotalVolume: l.TotalVolume()})
	}
	for _, c := range r.IntraOpTracker.Consciousness {
		d.Consciousness = append(d.Consciousness, ConsciousnessLine{
			ID:          c.ID,
			Description: clinicalcalc.ConsciousnessDescription(c.Score),
			Response:    clinicalcalc.ConsciousnessResponse(c.Score),
		})
	}

	d.Advisories = append(d.Advisories, patientAdvisories(r.Patient, bmi)...)
	d.Advisories = append(d.Advisories, assessmentAdvisories("preOpAssessment", d.NPO, d.ASA)...)
	d.Advisories = append(d.Advisories, assessmentAdvisories("patientAssessment",
		clinicalcalc.ValidateNPO(r.PatientAssessment.NPOHours, clinicalcalc.NPOGeneral),
		clinicalcalc.ValidateASAClassification(r.PatientAssessment.ASA, age.Years, r.Comorbidities()),
	)...)
	for _, e := range r.Medications.LoggedDrugs {
		if e.Error != "" {
			d.Advisories = append(d.Advisories, Advisory{Field: "medications.loggedDrugs." + e.ID, Severity: fieldcheck.SeverityError, Message: e.Error})
		}
	}
	return d
}

// assessmentAdvisories reports the NPO and ASA checks of one assessment
// section. An NPO result that is not valid is an error; the rest warn.
func assessmentAdvisories(section string, npo clinicalcalc.NPOResult, asa clinicalcalc.ASAResult) []Advisory {
	var out []Advisory
	if npo.Warning != "" {
		sev := fieldcheck.SeverityWarning
		if !npo.Valid {
			sev = fieldcheck.SeverityError
		}
		out = append(out, Advisory{Field: section + ".npoHours", Severity: sev, Message: npo.Warning})
	}
	if asa.Warning != "" {
		out = append(out, Advisory{Field: section + ".asa", Severity: fieldcheck.SeverityWarning, Message: asa.Warning})
	}
	return out
}

func patientAdvisories(p PatientInfo, bmi clinicalcalc.BMI) []Advisory {
	var out []Advisory
	if p.Weight < 0 {
		out = append(out, Advisory{Field: "patient.weight", Severity: fieldcheck.SeverityError, Message: "Weight must be positive"})
	}
	if p.Height < 0 {
		out = append(out, Advisory{Field: "patient.height", Severity: fieldcheck.SeverityError, Message: "Height must be positive"})
	}
	if bmi.Category == clinicalcalc.BMIInvalid || bmi.Category == clinicalcalc.BMINormal {
		return out
	}
	out = append(out, Advisory{Field: "patient.bmi", Severity: fieldcheck.SeverityWarning, Message: bmi.Category + " BMI"})
	if msg := bmiASAConsiderations[bmi.Category]; msg != "" {
		out = append(out, Advisory{Field: "preOpAssessment.asa", Severity: fieldcheck.SeverityWarning, Message: msg})
	}
	return out
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
