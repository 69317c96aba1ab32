package anesthesia

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/anesthesia/internal/platform/snapshot"
	"github.com/ehr/anesthesia/pkg/clock"
)

// -- Mock Repository --

// mockRepo stores encoded copies so edits only land through Update.
type mockRepo struct {
	records map[uuid.UUID][]byte
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID][]byte)}
}

func (m *mockRepo) Create(_ context.Context, r *Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	b, _ := json.Marshal(r)
	m.records[r.ID] = b
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	b, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *mockRepo) Update(_ context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return ErrRecordNotFound
	}
	r.UpdatedAt = time.Now()
	b, _ := json.Marshal(r)
	m.records[r.ID] = b
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	var result []*Record
	for id := range m.records {
		r, _ := m.GetByID(ctx, id)
		result = append(result, r)
	}
	return result, len(result), nil
}

var testNow = time.Date(2024, 6, 15, 9, 41, 0, 0, time.UTC)

func newTestService() *Service {
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), zerolog.Nop())
	return NewService(newMockRepo(), store, WithClocks(clock.Fixed(testNow), clock.Fixed(testNow)))
}

func mustCreate(t *testing.T, svc *Service) *Record {
	t.Helper()
	rec, err := svc.CreateRecord(context.Background(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return rec
}

func mustMerge(t *testing.T, svc *Service, id uuid.UUID, section, patch string) *Record {
	t.Helper()
	rec, err := svc.MergeSection(context.Background(), id, section, json.RawMessage(patch))
	if err != nil {
		t.Fatalf("merge %s: %v", section, err)
	}
	return rec
}

// -- Records --

func TestCreateRecord_Defaults(t *testing.T) {
	svc := newTestService()
	rec := mustCreate(t, svc)

	if rec.Date != "2024-06-15" || rec.Time != "09:41" {
		t.Errorf("unexpected date/time %s %s", rec.Date, rec.Time)
	}
	if rec.PreOpAssessment.ASA != 1 || rec.PreOpAssessment.Mallampatti != 1 {
		t.Errorf("expected ASA 1 and Mallampati 1, got %+v", rec.PreOpAssessment.ClinicalAssessment)
	}
	if rec.Patient.Sex != "M" || rec.Medications.Oxygen.Rate != "3.0" {
		t.Errorf("unexpected defaults: sex %q oxygen %q", rec.Patient.Sex, rec.Medications.Oxygen.Rate)
	}
	if rec.PageNumber != 1 || rec.TotalPages != 1 {
		t.Errorf("expected page 1 of 1")
	}
}

func TestCreateRecord_InitialSections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec, err := svc.CreateRecord(ctx, map[string]json.RawMessage{
		"patient": json.RawMessage(`{"name":"Jane","weight":70,"height":70}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Patient.Name != "Jane" || rec.Patient.Sex != "M" {
		t.Errorf("unexpected patient %+v", rec.Patient)
	}

	if _, err := svc.CreateRecord(ctx, map[string]json.RawMessage{"bogus": json.RawMessage(`{}`)}); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
}

func TestGetView_Derived(t *testing.T) {
	svc := newTestService()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionPatient, `{"dob":"2000-06-15","weight":70,"height":70}`)

	v, err := svc.GetView(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Derived.Age != 24 || v.Derived.BMI != 22.1 || v.Derived.BMICategory != "Normal" {
		t.Errorf("unexpected derived values %+v", v.Derived)
	}
}

func TestDeleteRecord(t *testing.T) {
	svc := newTestService()
	rec := mustCreate(t, svc)
	ctx := context.Background()
	if err := svc.DeleteRecord(ctx, rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetRecord(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := svc.DeleteRecord(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestMergeSection_FailureLeavesRecordUnchanged(t *testing.T) {
	svc := newTestService()
	rec := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.MergeSection(ctx, rec.ID, SectionPatient, json.RawMessage(`{"weight":"heavy"}`)); !errors.Is(err, ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
	if _, err := svc.MergeSection(ctx, rec.ID, SectionDischargeScore, json.RawMessage(`{"color":3}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	got, _ := svc.GetRecord(ctx, rec.ID)
	if got.Patient.Weight != 0 || got.DischargeScore.Color != 0 {
		t.Errorf("failed edits were saved: %+v %+v", got.Patient, got.DischargeScore)
	}
}

// -- Propagation --

func TestPreOpToIntraOpPropagation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	mustMerge(t, svc, rec.ID, SectionPreOpVitals, `{"bloodPressure":"120/80","pulse":"72","spo2":"98","respiratoryRate":"16"}`)
	if _, err := svc.SetTakenDayOfProcedure(ctx, rec.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, loaded, err := svc.LoadIntraOpVitals(ctx, rec.ID)
	if err != nil || !loaded {
		t.Fatalf("expected load, got %v %v", loaded, err)
	}
	if got.Vitals.BloodPressure != "120/80" || got.Vitals.Pulse != "72" || got.Vitals.SpO2 != "98" || got.Vitals.Respiration != "16" {
		t.Errorf("unexpected intra-op vitals %+v", got.Vitals)
	}

	// Clearing the flag removes the slot but does not roll back intra-op values.
	if _, err := svc.SetTakenDayOfProcedure(ctx, rec.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, loaded, _ = svc.LoadIntraOpVitals(ctx, rec.ID)
	if loaded {
		t.Error("expected no snapshot after clearing the flag")
	}
	if got.Vitals.BloodPressure != "120/80" {
		t.Errorf("intra-op vitals were rolled back: %+v", got.Vitals)
	}
}

func TestTakenDayOfProcedure_ViaSectionPatch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	mustMerge(t, svc, rec.ID, SectionPreOpVitals, `{"bloodPressure":"130/85","takenDayOfProcedure":true}`)
	got, loaded, _ := svc.LoadIntraOpVitals(ctx, rec.ID)
	if !loaded || got.Vitals.BloodPressure != "130/85" {
		t.Errorf("expected snapshot from section patch, got %v %+v", loaded, got.Vitals)
	}
}

func TestPatientInfoToPreOpVitals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	mustMerge(t, svc, rec.ID, SectionPatient, `{"weight":70,"height":69.6}`)
	got, loaded, err := svc.LoadPreOpVitals(ctx, rec.ID)
	if err != nil || !loaded {
		t.Fatalf("expected load, got %v %v", loaded, err)
	}
	if got.PreOpVitals.Height != "70" || got.PreOpVitals.WeightLbs != "154" || got.PreOpVitals.WeightKg != "70" {
		t.Errorf("unexpected pre-op vitals %+v", got.PreOpVitals)
	}
}

func TestPreOpWeightWriteBack(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionPatient, `{"name":"Jane","weight":60,"height":65}`)

	got, err := svc.SetPreOpWeight(ctx, rec.ID, WeightInput{Value: "165", Unit: "lbs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PreOpVitals.WeightLbs != "165" || got.PreOpVitals.WeightKg != "74.8" {
		t.Errorf("unexpected display values %+v", got.PreOpVitals)
	}

	slot, ok := snapshot.Get[PatientInfo](ctx, svc.store, snapshot.RecordKey(rec.ID.String(), snapshot.KeyPatientInfo))
	if !ok || slot.Weight != 74.8 || slot.Name != "Jane" || slot.Height != 65 {
		t.Errorf("unexpected patient slot %+v", slot)
	}
	if got.Patient.Weight != 60 {
		t.Errorf("write-back must not touch the patient section, got %v", got.Patient.Weight)
	}

	if _, err := svc.SetPreOpWeight(ctx, rec.ID, WeightInput{Value: "70", Unit: "stone"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown unit, got %v", err)
	}
}

func TestPreOpHeightWriteBack(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	key := snapshot.RecordKey(rec.ID.String(), snapshot.KeyPatientInfo)

	got, err := svc.SetPreOpHeight(ctx, rec.ID, HeightInput{Value: "178", Unit: HeightCM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PreOpVitals.Height != "70" {
		t.Errorf("expected 70 inches, got %s", got.PreOpVitals.Height)
	}
	if slot, ok := snapshot.Get[PatientInfo](ctx, svc.store, key); !ok || slot.Height != 70 {
		t.Errorf("unexpected slot %+v", slot)
	}

	feet, inches := 5, 11
	got, err = svc.SetPreOpHeight(ctx, rec.ID, HeightInput{Feet: &feet, Inches: &inches})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PreOpVitals.Height != "71" {
		t.Errorf("expected 71, got %s", got.PreOpVitals.Height)
	}

	bad := 12
	if _, err := svc.SetPreOpHeight(ctx, rec.ID, HeightInput{Feet: &feet, Inches: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// -- Discharge --

func TestDischargeCirculation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionPreOpVitals, `{"bloodPressure":"120/80"}`)
	if _, err := svc.SetTakenDayOfProcedure(ctx, rec.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.SetDischargeBloodPressure(ctx, rec.ID, "95/60")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DischargeScore.Circulation != 1 || !got.DischargeScore.CirculationAuto {
		t.Errorf("expected auto circulation 1, got %+v", got.DischargeScore)
	}

	got, err = svc.SetCirculation(ctx, rec.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DischargeScore.Circulation != 2 || got.DischargeScore.CirculationAuto {
		t.Errorf("manual score should clear auto flag, got %+v", got.DischargeScore)
	}

	if _, err := svc.SetCirculation(ctx, rec.ID, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDischargeCirculation_NoSnapshot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionDischargeScore, `{"circulation":1}`)

	got, err := svc.SetDischargeBloodPressure(ctx, rec.ID, "95/60")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DischargeScore.Circulation != 1 || got.DischargeScore.CirculationAuto {
		t.Errorf("circulation should be unchanged, got %+v", got.DischargeScore)
	}
	if got.DischargeScore.DischargeBloodPressure != "95/60" {
		t.Errorf("reading not stored: %q", got.DischargeScore.DischargeBloodPressure)
	}
}

func TestDischargeSectionPatch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionPreOpVitals, `{"bloodPressure":"120/80","takenDayOfProcedure":true}`)

	got := mustMerge(t, svc, rec.ID, SectionDischargeScore, `{"dischargeBloodPressure":"118/76"}`)
	if got.DischargeScore.Circulation != 2 || !got.DischargeScore.CirculationAuto {
		t.Errorf("expected auto circulation 2, got %+v", got.DischargeScore)
	}
	got = mustMerge(t, svc, rec.ID, SectionDischargeScore, `{"circulation":0,"ambulation":2}`)
	if got.DischargeScore.CirculationAuto || got.DischargeScore.Total() != 2 {
		t.Errorf("unexpected score %+v", got.DischargeScore)
	}

	v, _ := svc.GetView(ctx, rec.ID)
	if v.Derived.DischargeTotal != 2 {
		t.Errorf("expected total 2, got %d", v.Derived.DischargeTotal)
	}
}

// -- Prescriptions --

func TestPrescriptions_DraftAndSubmit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	d, err := svc.AddDraft(ctx, rec.ID, CategoryPain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Norco 5/325mg Tab # 20 Ṫ-ṪṪ PO QID prn pain" || d.Quantity != 20 || !d.Prescribed || d.Refills != 0 {
		t.Errorf("unexpected draft %+v", d)
	}

	d, err = svc.UpdateDraft(ctx, rec.ID, d.ID, json.RawMessage(`{"name":"Motrin 800mg Tab # 50 Ṫ PO TID prn pain","refills":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Quantity != 50 || d.Refills != 1 {
		t.Errorf("template select should set default quantity, got %+v", d)
	}

	entry, err := svc.SubmitDraft(ctx, rec.ID, d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID == d.ID || entry.Quantity != 50 || entry.Category != CategoryPain {
		t.Errorf("unexpected log entry %+v", entry)
	}

	got, _ := svc.GetRecord(ctx, rec.ID)
	if len(got.MedicationPrescriptions.DraftMedications) != 0 || len(got.MedicationPrescriptions.MedicationLog) != 1 {
		t.Errorf("draft not moved: %+v", got.MedicationPrescriptions)
	}
	if _, err := svc.SubmitDraft(ctx, rec.ID, d.ID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound on resubmit, got %v", err)
	}
}

func TestPrescriptions_UnknownCategory(t *testing.T) {
	svc := newTestService()
	rec := mustCreate(t, svc)
	if _, err := svc.AddDraft(context.Background(), rec.ID, "vitamins"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// -- Intra-op tracker --

func TestMedicationEntries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	e, err := svc.AddMedication(ctx, rec.ID, MedicationInput{Dose: 2, Unit: "mg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Time != "0941" || e.Route != "IV" || e.Used != "2" || e.Wasted != "0" {
		t.Errorf("unexpected entry %+v", e)
	}

	e, err = svc.UpdateMedication(ctx, rec.ID, e.ID, json.RawMessage(`{"used":"1.5","wasted":"0.5"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Total() != 2 {
		t.Errorf("expected total 2, got %v", e.Total())
	}

	if _, err := svc.AddMedication(ctx, rec.ID, MedicationInput{Dose: 4, Unit: "mg"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	totals, err := svc.MedicationTotals(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(totals) != 1 || totals[0].Medication != "Midazolam" || totals[0].Used != 5.5 || totals[0].Wasted != 0.5 || totals[0].GrandTotal != 6 {
		t.Errorf("unexpected totals %+v", totals)
	}

	if _, err := svc.UpdateMedication(ctx, rec.ID, "missing", json.RawMessage(`{}`)); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
	if err := svc.RemoveMedication(ctx, rec.ID, e.ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := svc.AddMedication(ctx, rec.ID, MedicationInput{Dose: 0, Unit: "mg"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLocalAnestheticEntries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	e, err := svc.AddLocalAnesthetic(ctx, rec.ID, LocalAnestheticInput{Type: "articaine", Concentration: "4%", Epinephrine: "1:100k", Carpules: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.TotalVolume() != 3.4 {
		t.Errorf("expected 3.4 mL, got %v", e.TotalVolume())
	}
	e, err = svc.UpdateLocalAnesthetic(ctx, rec.ID, e.ID, json.RawMessage(`{"carpules":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.TotalVolume() < 5.09 || e.TotalVolume() > 5.11 {
		t.Errorf("expected 5.1 mL, got %v", e.TotalVolume())
	}

	if _, err := svc.AddLocalAnesthetic(ctx, rec.ID, LocalAnestheticInput{Type: "procaine"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConsciousnessAndGases(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	if _, err := svc.AddConsciousness(ctx, rec.ID, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddConsciousness(ctx, rec.ID, 6); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.UpdateGas(ctx, rec.ID, GasNitrous, json.RawMessage(`{"startTime":"0900"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.UpdateGas(ctx, rec.ID, GasNitrous, json.RawMessage(`{"endTime":"0930"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := got.IntraOpTracker.Gases.Nitrous
	if n.StartTime != "0900" || n.EndTime != "0930" {
		t.Errorf("gas merge lost fields: %+v", n)
	}
	if _, err := svc.UpdateGas(ctx, rec.ID, "helium", json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("expected ErrInvalidPatch, got %v", err)
	}
}

func TestLogDrug(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)

	e, err := svc.LogDrug(ctx, rec.ID, DrugLogInput{Name: "Midazolam", Dose: "2", Used: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.FormattedDose != "09:41 2 mg" || e.Error != "" {
		t.Errorf("unexpected entry %+v", e)
	}
	bad, err := svc.LogDrug(ctx, rec.ID, DrugLogInput{Name: "Fentanyl", Dose: "abc"})
	if err != nil {
		t.Fatalf("invalid doses are stored, got %v", err)
	}
	if bad.Error != "Invalid dose amount" {
		t.Errorf("expected dose error, got %+v", bad)
	}

	v, _ := svc.GetView(ctx, rec.ID)
	if v.Derived.DrugTotals.TotalUsed != 2 {
		t.Errorf("unexpected totals %+v", v.Derived.DrugTotals)
	}
}

func TestPrint_DoesNotMutate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionPatient, `{"name":"Jane Doe"}`)
	before, _ := svc.GetRecord(ctx, rec.ID)

	out, err := svc.Print(ctx, rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected output")
	}
	after, _ := svc.GetRecord(ctx, rec.ID)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("print must not modify the record")
	}
}

type countingEdits map[string]int

func (c countingEdits) RecordEdit(section string) { c[section]++ }

func TestEditRecorder(t *testing.T) {
	edits := countingEdits{}
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), zerolog.Nop())
	svc := NewService(newMockRepo(), store, WithEditRecorder(edits))
	rec := mustCreate(t, svc)
	mustMerge(t, svc, rec.ID, SectionVitals, `{"pulse":"70"}`)
	if edits[SectionVitals] != 1 {
		t.Errorf("expected 1 vitals edit, got %v", edits)
	}
}

func TestEdit_RunsInsideTransactor(t *testing.T) {
	var calls int
	var txErr error
	tx := func(ctx context.Context, fn func(context.Context) error) error {
		calls++
		txErr = fn(ctx)
		return txErr
	}
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), zerolog.Nop())
	svc := NewService(newMockRepo(), store, WithClocks(clock.Fixed(testNow), clock.Fixed(testNow)), WithTransactor(tx))
	rec := mustCreate(t, svc)

	mustMerge(t, svc, rec.ID, SectionPatient, `{"name":"Jane"}`)
	if calls != 1 || txErr != nil {
		t.Fatalf("expected one successful transaction, got %d (%v)", calls, txErr)
	}

	if _, err := svc.MergeSection(context.Background(), rec.ID, SectionPatient, json.RawMessage(`{"weight":"x"}`)); err == nil {
		t.Fatal("expected merge error")
	}
	if calls != 2 || txErr == nil {
		t.Errorf("expected the failing edit to surface inside the transaction, got %d (%v)", calls, txErr)
	}
}

func TestEdit_SnapshotsWaitForCommit(t *testing.T) {
	errCommit := errors.New("commit failed")
	failCommit := false
	tx := func(ctx context.Context, fn func(context.Context) error) error {
		if err := fn(ctx); err != nil {
			return err
		}
		if failCommit {
			return errCommit
		}
		return nil
	}
	store := snapshot.NewStore(snapshot.NewMemoryBackend(), zerolog.Nop())
	svc := NewService(newMockRepo(), store, WithClocks(clock.Fixed(testNow), clock.Fixed(testNow)), WithTransactor(tx))
	ctx := context.Background()
	rec := mustCreate(t, svc)
	vitals := snapshot.RecordKey(rec.ID.String(), snapshot.KeyPreOpVitals)
	patient := snapshot.RecordKey(rec.ID.String(), snapshot.KeyPatientInfo)

	failCommit = true
	if _, err := svc.MergeSection(ctx, rec.ID, SectionPreOpVitals, json.RawMessage(`{"bloodPressure":"120/80","takenDayOfProcedure":true}`)); !errors.Is(err, errCommit) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if _, ok := store.Raw(ctx, vitals); ok {
		t.Error("vitals slot published for an edit that did not commit")
	}
	if _, err := svc.SetPreOpWeight(ctx, rec.ID, WeightInput{Value: "70", Unit: "kg"}); !errors.Is(err, errCommit) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if _, ok := store.Raw(ctx, patient); ok {
		t.Error("patient slot merged for an edit that did not commit")
	}

	failCommit = false
	if _, err := svc.SetTakenDayOfProcedure(ctx, rec.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Raw(ctx, vitals); !ok {
		t.Fatal("expected vitals slot after a committed edit")
	}

	failCommit = true
	if _, err := svc.SetTakenDayOfProcedure(ctx, rec.ID, false); !errors.Is(err, errCommit) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if _, ok := store.Raw(ctx, vitals); !ok {
		t.Error("vitals slot removed for an edit that did not commit")
	}
}
