package anesthesia

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMergeSection_PreservesOmittedKeys(t *testing.T) {
	r := NewRecord(testNow)
	if err := r.MergeSection(SectionPatient, json.RawMessage(`{"name":"Jane","weight":70}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.MergeSection(SectionPatient, json.RawMessage(`{"height":65}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Patient.Name != "Jane" || r.Patient.Weight != 70 || r.Patient.Height != 65 || r.Patient.Sex != "M" {
		t.Errorf("unexpected patient %+v", r.Patient)
	}
}

func TestMergeSection_EmbeddedAssessment(t *testing.T) {
	r := NewRecord(testNow)
	patch := `{"asa":3,"patientIdentified":true,"highRiskPatient":true,"allergies":["latex"]}`
	if err := r.MergeSection(SectionPreOpAssessment, json.RawMessage(patch)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := r.PreOpAssessment
	if a.ASA != 3 || a.Mallampatti != 1 || !a.PatientIdentified || a.HighRiskPatient != Yes || len(a.Allergies) != 1 {
		t.Errorf("unexpected assessment %+v", a)
	}
	if err := r.MergeSection(SectionPreOpAssessment, json.RawMessage(`{"highRiskPatient":null}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.PreOpAssessment.HighRiskPatient != Unset {
		t.Errorf("expected unset, got %v", r.PreOpAssessment.HighRiskPatient)
	}
}

func TestMergeSection_Header(t *testing.T) {
	r := NewRecord(testNow)
	if err := r.MergeSection(SectionHeader, json.RawMessage(`{"notes":"difficult airway","totalPages":2}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Notes != "difficult airway" || r.TotalPages != 2 || r.PageNumber != 1 || r.Date != "2024-06-15" {
		t.Errorf("unexpected header: %q %d/%d %s", r.Notes, r.PageNumber, r.TotalPages, r.Date)
	}
}

func TestMergeSection_Errors(t *testing.T) {
	r := NewRecord(testNow)
	tests := []struct {
		name    string
		section string
		patch   string
		want    error
	}{
		{"unknown section", "billing", `{}`, ErrUnknownSection},
		{"not an object", SectionPatient, `[1,2]`, ErrInvalidPatch},
		{"empty body", SectionPatient, ``, ErrInvalidPatch},
		{"wrong type", SectionPatient, `{"weight":"heavy"}`, ErrInvalidPatch},
		{"bad tri-state", SectionMedicalReview, `{"allergiesReviewed":"maybe"}`, ErrInvalidPatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.MergeSection(tt.section, json.RawMessage(tt.patch)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if r.Patient.Weight != 0 {
		t.Error("failed merge modified the record")
	}
}

func TestMergeSection_VitalsAcceptNumbers(t *testing.T) {
	r := NewRecord(testNow)
	if err := r.MergeSection(SectionVitals, json.RawMessage(`{"pulse":72,"spo2":"98","bloodPressure":"120/80"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Vitals.Pulse != "72" || r.Vitals.SpO2 != "98" {
		t.Errorf("unexpected vitals %+v", r.Vitals)
	}
	if n, ok := r.Vitals.Pulse.Float(); !ok || n != 72 {
		t.Errorf("Float() = %v %v", n, ok)
	}
}

func TestSectionNames(t *testing.T) {
	names := SectionNames()
	if len(names) != len(sections) {
		t.Fatalf("expected %d names, got %d", len(sections), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestTriState_JSON(t *testing.T) {
	var v struct {
		A TriState `json:"a"`
		B TriState `json:"b"`
		C TriState `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":true,"b":false,"c":null}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.A != Yes || v.B != No || v.C != Unset {
		t.Errorf("unexpected values %v %v %v", v.A, v.B, v.C)
	}
	out, _ := json.Marshal(v)
	if string(out) != `{"a":true,"b":false,"c":null}` {
		t.Errorf("unexpected encoding %s", out)
	}
}

func TestUpdateDraft_KeepsIdentity(t *testing.T) {
	r := NewRecord(testNow)
	d, _ := r.AddDraft(CategoryAntibiotic)
	got, err := r.UpdateDraft(d.ID, json.RawMessage(`{"id":"other","category":"pain","quantity":10}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != d.ID || got.Category != CategoryAntibiotic || got.Quantity != 10 {
		t.Errorf("unexpected draft %+v", got)
	}
	if err := r.DeleteDraft(d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.DeleteDraft(d.ID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestParseSystolic(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"120/80", 120, true},
		{" 95 / 60", 95, true},
		{"80", 80, true},
		{"1200/80", 120, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"9/6", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSystolic(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSystolic(%q) = %d %v, want %d %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCirculationScore(t *testing.T) {
	tests := []struct {
		pre, post string
		want      int
		ok        bool
	}{
		{"120/80", "120/80", 2, true},
		{"120/80", "96/60", 2, true},
		{"120/80", "95/60", 1, true},
		{"120/80", "60/40", 1, true},
		{"120/80", "59/40", 0, true},
		{"", "95/60", 0, false},
		{"120/80", "", 0, false},
		{"00/00", "95/60", 0, false},
	}
	for _, tt := range tests {
		got, ok := CirculationScore(tt.pre, tt.post)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CirculationScore(%q, %q) = %d %v, want %d %v", tt.pre, tt.post, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDischargeTotal_OrderIndependent(t *testing.T) {
	a := DischargeScore{}
	for _, in := range []DischargeScoresInput{{Color: intp(2)}, {Ambulation: intp(1)}, {Circulation: intp(2)}} {
		in.Apply(&a)
	}
	b := DischargeScore{}
	DischargeScoresInput{Circulation: intp(2), Ambulation: intp(1), Color: intp(2)}.Apply(&b)
	if a.Total() != 5 || b.Total() != 5 {
		t.Errorf("totals differ: %d %d", a.Total(), b.Total())
	}
}

func intp(v int) *int { return &v }

func TestCompletionPercent(t *testing.T) {
	if got := CompletionPercent([]bool{true, false, false}); got != 33 {
		t.Errorf("expected 33, got %d", got)
	}
	if got := CompletionPercent([]bool{true, true, false}); got != 67 {
		t.Errorf("expected 67, got %d", got)
	}
	if got := CompletionPercent(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestDerive_Advisories(t *testing.T) {
	r := NewRecord(testNow)
	r.Patient.DOB = "1980-01-01"
	r.Patient.Weight = 100
	r.Patient.Height = 70
	r.PreOpAssessment.NPOHours = 4
	r.PreOpAssessment.ASA = 3

	d := Derive(r, testNow)
	if d.BMICategory != "Obese I" {
		t.Fatalf("expected Obese I, got %s", d.BMICategory)
	}
	var messages []string
	for _, a := range d.Advisories {
		messages = append(messages, a.Message)
	}
	joined := strings.Join(messages, "|")
	for _, want := range []string{
		"Obese I BMI",
		"Consider ASA II-III for obesity-related comorbidities",
		"NPO time (4h) is less than recommended minimum (6h)",
		"ASA classification may be too high without documented comorbidities",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing advisory %q in %s", want, joined)
		}
	}
}

func TestDerive_PatientAssessmentAdvisories(t *testing.T) {
	r := NewRecord(testNow)
	r.Patient.DOB = "1980-01-01"
	r.PreOpAssessment.NPOHours = 8
	r.PreOpAssessment.ASA = 2
	r.PatientAssessment.NPOHours = 4
	r.PatientAssessment.ASA = 4

	fields := map[string]string{}
	for _, a := range Derive(r, testNow).Advisories {
		fields[a.Field] = a.Message
	}
	if got := fields["patientAssessment.npoHours"]; got != "NPO time (4h) is less than recommended minimum (6h)" {
		t.Errorf("unexpected npo advisory %q", got)
	}
	if got := fields["patientAssessment.asa"]; got != "ASA classification may be too high without documented comorbidities" {
		t.Errorf("unexpected asa advisory %q", got)
	}
	if _, ok := fields["preOpAssessment.npoHours"]; ok {
		t.Error("pre-op assessment within limits must not warn")
	}
}

func TestDerive_NormalPatientHasNoBMIAdvisory(t *testing.T) {
	r := NewRecord(testNow)
	r.Patient.Weight = 70
	r.Patient.Height = 70
	r.PreOpAssessment.NPOHours = 7
	for _, a := range Derive(r, testNow).Advisories {
		if a.Field == "patient.bmi" {
			t.Errorf("unexpected advisory %+v", a)
		}
	}
}

func TestDerive_AgeIsComputedAtReadTime(t *testing.T) {
	r := NewRecord(testNow)
	r.Patient.DOB = "2000-06-15"
	if got := Derive(r, time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)).Age; got != 23 {
		t.Errorf("expected 23, got %d", got)
	}
	if got := Derive(r, testNow).Age; got != 24 {
		t.Errorf("expected 24, got %d", got)
	}
}

func TestRenderPrint(t *testing.T) {
	r := NewRecord(testNow)
	r.Patient.Name = "Jane Doe"
	r.IntraOpTracker.Medications = append(r.IntraOpTracker.Medications, MedicationEntry{ID: "m1", Dose: 50, Unit: "mcg", Used: "50", Wasted: "0"})

	out, err := RenderPrint(NewView(r, testNow))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(out)
	for _, want := range []string{"Jane Doe", "Fentanyl: used 50 mcg", "Discharge score: 0/10"} {
		if !strings.Contains(text, want) {
			t.Errorf("print output missing %q:\n%s", want, text)
		}
	}
}
