package anesthesia

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/ehr/anesthesia/pkg/clinicalcalc"
)

// View is a record together with its derived values.
type View struct {
	Record  *Record `json:"record"`
	Derived Derived `json:"derived"`
}

func NewView(r *Record, now time.Time) View {
	return View{Record: r, Derived: Derive(r, now)}
}

var printFuncs = template.FuncMap{
	"num":      clinicalcalc.FormatNumber,
	"asa":      clinicalcalc.ASADescription,
	"yesno":    func(b bool) string { return map[bool]string{true: "Yes", false: "No"}[b] },
	"join":     strings.Join,
	"category": CategoryDisplayName,
	"dash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

var printTemplate = template.Must(template.New("print").Funcs(printFuncs).Parse(`ANESTHESIA RECORD    Page {{.Record.PageNumber}} of {{.Record.TotalPages}}
Date: {{.Record.Date}}  Time: {{.Record.Time}}

PATIENT
  Name: {{dash .Record.Patient.Name}}  DOB: {{dash .Record.Patient.DOB}}  Age: {{.Derived.Age}}  Sex: {{.Record.Patient.Sex}}
  Weight: {{num .Record.Patient.Weight}} kg  Height: {{num .Record.Patient.Height}} in  BMI: {{num .Derived.BMI}} ({{.Derived.BMICategory}})

PRE-OP
  ASA {{.Record.PreOpAssessment.ASA}}: {{asa .Record.PreOpAssessment.ASA}}  Mallampati: {{.Record.PreOpAssessment.Mallampatti}}  NPO: {{num .Record.PreOpAssessment.NPOHours}}h
  Allergies: {{dash (join .Record.PreOpAssessment.Allergies ", ")}}
  Assessment checklist: {{.Derived.ChecklistCompletion.PreOpAssessment}}%  Equipment checklist: {{.Derived.ChecklistCompletion.PreOpChecklist}}%
  Vitals: BP {{dash .Record.PreOpVitals.BloodPressure}}  Pulse {{dash .Record.PreOpVitals.Pulse}}  SpO2 {{dash .Record.PreOpVitals.SpO2}}  RR {{dash .Record.PreOpVitals.RespiratoryRate}}  Taken day of procedure: {{yesno .Record.PreOpVitals.TakenDayOfProcedure}}
{{- with .Record.MedicationPrescriptions.MedicationLog}}
  Prescriptions:
{{- range .}}
    [{{category .Category}}] {{.Name}}  Qty {{.Quantity}}  Refills {{.Refills}}
{{- end}}
{{- end}}

INTRA-OP
  Vitals: BP {{dash (print .Record.Vitals.BloodPressure)}}  Pulse {{dash (print .Record.Vitals.Pulse)}}  SpO2 {{dash (print .Record.Vitals.SpO2)}}  RR {{dash (print .Record.Vitals.Respiration)}}
  Monitoring checklist: {{.Derived.ChecklistCompletion.Monitoring}}%
{{- with .Derived.MedicationTotals}}
  Medication totals:
{{- range .}}
    {{.Medication}}: used {{num .Used}} {{.Unit}}, wasted {{num .Wasted}} {{.Unit}}, total {{num .GrandTotal}} {{.Unit}}
{{- end}}
{{- end}}
{{- with .Derived.LocalAnesthetics}}
  Local anesthetics:
{{- range .}}
    {{.DisplayName}}  {{num .TotalVolume}} mL
{{- end}}
{{- end}}
  Drug log: used {{num .Derived.DrugTotals.TotalUsed}}  wasted {{num .Derived.DrugTotals.TotalWasted}}  dispensed {{num .Derived.DrugTotals.TotalDispensed}}

POST-OP
  Discharge score: {{.Derived.DischargeTotal}}/10  (circulation {{.Record.DischargeScore.Circulation}}{{if .Record.DischargeScore.CirculationAuto}} auto{{end}}, ambulation {{.Record.DischargeScore.Ambulation}}, respiration {{.Record.DischargeScore.Respiration}}, consciousness {{.Record.DischargeScore.Consciousness}}, color {{.Record.DischargeScore.Color}})
  Time discharged: {{dash .Record.DischargeScore.TimeDischarged}}

SIGNATURES
  Surgeon: {{dash .Record.Signatures.SurgeonName}}
  Anesthesia provider: {{dash .Record.Signatures.AnesthesiaProviderName}}
  Surgical assistant: {{dash .Record.Signatures.SurgicalAssistantName}}
{{- with .Record.Notes}}

NOTES
  {{.}}
{{- end}}
`))

// RenderPrint renders v as plain text. It never modifies the record.
func RenderPrint(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render record: %w", err)
	}
	return buf.Bytes(), nil
}
