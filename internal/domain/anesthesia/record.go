package anesthesia

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/anesthesia/pkg/clinicalcalc"
)

var (
	ErrRecordNotFound = errors.New("anesthesia record not found")
	ErrUnknownSection = errors.New("unknown section")
	ErrInvalidPatch   = errors.New("invalid patch")
	ErrDraftNotFound  = errors.New("draft medication not found")
	ErrEntryNotFound  = errors.New("entry not found")
)

// Section names accepted by MergeSection.
const (
	SectionHeader                  = "header"
	SectionPatient                 = "patient"
	SectionPreOpAssessment         = "preOpAssessment"
	SectionPatientAssessment       = "patientAssessment"
	SectionMedicalReview           = "medicalReview"
	SectionPreOpVitals             = "preOpVitals"
	SectionPreOpInstructions       = "preOpInstructions"
	SectionAnesthesiaType          = "anesthesiaType"
	SectionPreOpChecklist          = "preOpChecklist"
	SectionMedicationPrescriptions = "medicationPrescriptions"
	SectionVitals                  = "vitals"
	SectionMonitoring              = "monitoring"
	SectionNitrousOxide            = "nitrousOxide"
	SectionIVAccess                = "ivAccess"
	SectionMedications             = "medications"
	SectionIntraOpTracker          = "intraOpTracker"
	SectionSurgicalProcedure       = "surgicalProcedure"
	SectionLocalAnesthetic         = "localAnesthetic"
	SectionFluidManagement         = "fluidManagement"
	SectionAirwayProtection        = "airwayProtection"
	SectionTimeSummary             = "timeSummary"
	SectionDischargeScore          = "dischargeScore"
	SectionPostOpInstructions      = "postOpInstructions"
	SectionSignatures              = "signatures"
)

type mergeFunc func(r *Record, patch map[string]json.RawMessage) error

func field[T any](at func(*Record) *T) mergeFunc {
	return func(r *Record, patch map[string]json.RawMessage) error {
		next, err := overlay(*at(r), patch)
		if err != nil {
			return err
		}
		*at(r) = next
		return nil
	}
}

// header carries the top-level scalar fields of a record.
type header struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes"`
	PageNumber int    `json:"pageNumber"`
	TotalPages int    `json:"totalPages"`
}

var sections = map[string]mergeFunc{
	SectionHeader: func(r *Record, patch map[string]json.RawMessage) error {
		h, err := overlay(header{r.Date, r.Time, r.Notes, r.PageNumber, r.TotalPages}, patch)
		if err != nil {
			return err
		}
		r.Date, r.Time, r.Notes, r.PageNumber, r.TotalPages = h.Date, h.Time, h.Notes, h.PageNumber, h.TotalPages
		return nil
	},
	SectionPatient:                 field(func(r *Record) *PatientInfo { return &r.Patient }),
	SectionPreOpAssessment:         field(func(r *Record) *PreOpAssessment { return &r.PreOpAssessment }),
	SectionPatientAssessment:       field(func(r *Record) *PatientAssessment { return &r.PatientAssessment }),
	SectionMedicalReview:           field(func(r *Record) *MedicalReview { return &r.MedicalReview }),
	SectionPreOpVitals:             field(func(r *Record) *PreOpVitals { return &r.PreOpVitals }),
	SectionPreOpInstructions:       field(func(r *Record) *PreOpInstructions { return &r.PreOpInstructions }),
	SectionAnesthesiaType:          field(func(r *Record) *AnesthesiaType { return &r.AnesthesiaType }),
	SectionPreOpChecklist:          field(func(r *Record) *PreOpChecklist { return &r.PreOpChecklist }),
	SectionMedicationPrescriptions: field(func(r *Record) *MedicationPrescriptions { return &r.MedicationPrescriptions }),
	SectionVitals:                  field(func(r *Record) *Vitals { return &r.Vitals }),
	SectionMonitoring:              field(func(r *Record) *Monitoring { return &r.Monitoring }),
	SectionNitrousOxide:            field(func(r *Record) *NitrousOxide { return &r.NitrousOxide }),
	SectionIVAccess:                field(func(r *Record) *IVAccess { return &r.IVAccess }),
	SectionMedications:             field(func(r *Record) *Medications { return &r.Medications }),
	SectionIntraOpTracker:          field(func(r *Record) *IntraOpTracker { return &r.IntraOpTracker }),
	SectionSurgicalProcedure:       field(func(r *Record) *SurgicalProcedure { return &r.SurgicalProcedure }),
	SectionLocalAnesthetic:         field(func(r *Record) *LocalAnestheticSummary { return &r.LocalAnesthetic }),
	SectionFluidManagement:         field(func(r *Record) *FluidManagement { return &r.FluidManagement }),
	SectionAirwayProtection:        field(func(r *Record) *AirwayProtection { return &r.AirwayProtection }),
	SectionTimeSummary:             field(func(r *Record) *TimeSummary { return &r.TimeSummary }),
	SectionDischargeScore:          field(func(r *Record) *DischargeScore { return &r.DischargeScore }),
	SectionPostOpInstructions:      field(func(r *Record) *PostOpInstructions { return &r.PostOpInstructions }),
	SectionSignatures:              field(func(r *Record) *Signatures { return &r.Signatures }),
}

// SectionNames returns the mergeable section names in sorted order.
func SectionNames() []string {
	names := make([]string, 0, len(sections))
	for n := range sections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRecord returns a blank form dated at now.
func NewRecord(now time.Time) *Record {
	r := &Record{
		ID:         uuid.New(),
		Date:       now.Format(clinicalcalc.DateLayout),
		Time:       clinicalcalc.FormatHHMM(now),
		Patient:    PatientInfo{Sex: "M"},
		PageNumber: 1,
		TotalPages: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, a := range []*ClinicalAssessment{&r.PreOpAssessment.ClinicalAssessment, &r.PatientAssessment.ClinicalAssessment} {
		a.ASA = 1
		a.Mallampatti = 1
		a.Allergies = []string{}
		a.Medications = []string{}
	}
	r.Medications.Oxygen.Rate = "3.0"
	r.Medications.LoggedDrugs = []DrugLogEntry{}
	r.MedicationPrescriptions.DraftMedications = []PrescribedMedication{}
	r.MedicationPrescriptions.MedicationLog = []MedicationLogEntry{}
	r.IntraOpTracker.Medications = []MedicationEntry{}
	r.IntraOpTracker.Consciousness = []ConsciousnessEntry{}
	r.IntraOpTracker.LocalAnesthetics = []LocalAnestheticEntry{}
	r.SurgicalProcedure.Teeth = []string{}
	r.SurgicalProcedure.Technique = []string{}
	return r
}

// MergeSection overlays the keys of patch onto the named section. Keys the
// patch omits keep their values; keys the section does not define are
// ignored. The record is left untouched when the patch cannot be applied.
func (r *Record) MergeSection(name string, patch json.RawMessage) error {
	merge, ok := sections[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	fields, err := decodePatch(patch)
	if err != nil {
		return err
	}
	return merge(r, fields)
}

func decodePatch(patch json.RawMessage) (map[string]json.RawMessage, error) {
	patch = bytes.TrimSpace(patch)
	if len(patch) == 0 || patch[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidPatch)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return fields, nil
}

// overlay returns a copy of cur with the patch keys replaced.
func overlay[T any](cur T, patch map[string]json.RawMessage) (T, error) {
	var next T
	b, err := json.Marshal(cur)
	if err != nil {
		return next, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &merged); err != nil {
		return next, err
	}
	for k, v := range patch {
		merged[k] = v
	}
	if b, err = json.Marshal(merged); err != nil {
		return next, err
	}
	if err := json.Unmarshal(b, &next); err != nil {
		return next, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return next, nil
}

func patchEntry[T any](entries []T, id string, idOf func(T) string, patch json.RawMessage) (T, error) {
	var zero T
	fields, err := decodePatch(patch)
	if err != nil {
		return zero, err
	}
	delete(fields, "id")
	for i, e := range entries {
		if idOf(e) != id {
			continue
		}
		next, err := overlay(e, fields)
		if err != nil {
			return zero, err
		}
		entries[i] = next
		return next, nil
	}
	return zero, ErrEntryNotFound
}

func removeEntry[T any](entries []T, id string, idOf func(T) string) ([]T, error) {
	for i, e := range entries {
		if idOf(e) == id {
			return append(entries[:i:i], entries[i+1:]...), nil
		}
	}
	return entries, ErrEntryNotFound
}
