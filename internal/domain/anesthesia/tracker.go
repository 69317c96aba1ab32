package anesthesia

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/anesthesia/pkg/clinicalcalc"
	"github.com/ehr/anesthesia/pkg/clock"
)

const DefaultRoute = "IV"

// MedicationInput is a quick-entry medication administration.
type MedicationInput struct {
	Dose  float64 `json:"dose"`
	Unit  string  `json:"unit"`
	Route string  `json:"route"`
}

func (in MedicationInput) Validate() error {
	if in.Dose <= 0 {
		return fmt.Errorf("dose must be positive")
	}
	if in.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	return nil
}

// AddMedication appends an entry stamped with the display time at. The full
// dose counts as used and nothing as wasted until edited.
func (r *Record) AddMedication(in MedicationInput, at time.Time) MedicationEntry {
	route := in.Route
	if route == "" {
		route = DefaultRoute
	}
	e := MedicationEntry{
		ID:     uuid.NewString(),
		Time:   clinicalcalc.FormatCompactHHMM(at),
		Dose:   in.Dose,
		Unit:   in.Unit,
		Route:  route,
		Used:   clinicalcalc.FormatNumber(in.Dose),
		Wasted: "0",
	}
	r.IntraOpTracker.Medications = append(r.IntraOpTracker.Medications, e)
	return e
}

func (r *Record) UpdateMedication(id string, patch json.RawMessage) (MedicationEntry, error) {
	return patchEntry(r.IntraOpTracker.Medications, id, func(e MedicationEntry) string { return e.ID }, patch)
}

func (r *Record) RemoveMedication(id string) error {
	out, err := removeEntry(r.IntraOpTracker.Medications, id, func(e MedicationEntry) string { return e.ID })
	r.IntraOpTracker.Medications = out
	return err
}

// LocalAnestheticInput is one local anesthetic administration.
type LocalAnestheticInput struct {
	Type          string  `json:"type"`
	Concentration string  `json:"concentration"`
	Epinephrine   string  `json:"epinephrine"`
	Carpules      float64 `json:"carpules"`
}

func (in LocalAnestheticInput) Validate() error {
	if !clinicalcalc.LocalAnestheticType(in.Type).Valid() {
		return fmt.Errorf("type must be one of articaine, bupivicaine, mepivicaine, lidocaine")
	}
	if in.Carpules < 0 {
		return fmt.Errorf("carpules must not be negative")
	}
	return nil
}

func (r *Record) AddLocalAnesthetic(in LocalAnestheticInput, at time.Time) LocalAnestheticEntry {
	e := LocalAnestheticEntry{
		ID:            uuid.NewString(),
		Time:          clinicalcalc.FormatCompactHHMM(at),
		Type:          in.Type,
		Concentration: in.Concentration,
		Epinephrine:   in.Epinephrine,
		Carpules:      in.Carpules,
	}
	r.IntraOpTracker.LocalAnesthetics = append(r.IntraOpTracker.LocalAnesthetics, e)
	return e
}

func (r *Record) UpdateLocalAnesthetic(id string, patch json.RawMessage) (LocalAnestheticEntry, error) {
	return patchEntry(r.IntraOpTracker.LocalAnesthetics, id, func(e LocalAnestheticEntry) string { return e.ID }, patch)
}

func (r *Record) RemoveLocalAnesthetic(id string) error {
	out, err := removeEntry(r.IntraOpTracker.LocalAnesthetics, id, func(e LocalAnestheticEntry) string { return e.ID })
	r.IntraOpTracker.LocalAnesthetics = out
	return err
}

// AddConsciousness records a 1-5 consciousness score.
func (r *Record) AddConsciousness(score int, at time.Time) (ConsciousnessEntry, error) {
	if score < 1 || score > 5 {
		return ConsciousnessEntry{}, fmt.Errorf("score must be between 1 and 5")
	}
	e := ConsciousnessEntry{ID: uuid.NewString(), Time: clinicalcalc.FormatCompactHHMM(at), Score: score}
	r.IntraOpTracker.Consciousness = append(r.IntraOpTracker.Consciousness, e)
	return e, nil
}

func (r *Record) RemoveConsciousness(id string) error {
	out, err := removeEntry(r.IntraOpTracker.Consciousness, id, func(e ConsciousnessEntry) string { return e.ID })
	r.IntraOpTracker.Consciousness = out
	return err
}

// Gas types accepted by UpdateGas.
const (
	GasOxygen  = "oxygen"
	GasNitrous = "nitrous"
)

// UpdateGas shallow-merges patch into one gas block.
func (r *Record) UpdateGas(gas string, patch json.RawMessage) error {
	fields, err := decodePatch(patch)
	if err != nil {
		return err
	}
	switch gas {
	case GasOxygen:
		next, err := overlay(r.IntraOpTracker.Gases.Oxygen, fields)
		if err != nil {
			return err
		}
		r.IntraOpTracker.Gases.Oxygen = next
	case GasNitrous:
		next, err := overlay(r.IntraOpTracker.Gases.Nitrous, fields)
		if err != nil {
			return err
		}
		r.IntraOpTracker.Gases.Nitrous = next
	default:
		return fmt.Errorf("%w: unknown gas %q", ErrInvalidPatch, gas)
	}
	return nil
}

// DrugLogInput is a generic drug log line before validation.
type DrugLogInput struct {
	Name     string `json:"name"`
	Dose     string `json:"dose"`
	Unit     string `json:"unit"`
	Used     bool   `json:"used"`
	Wasted   bool   `json:"wasted"`
	Witness  string `json:"witness"`
	Initials string `json:"initials"`
}

func (in DrugLogInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// LogDrug validates the dose against c and appends the line. Invalid doses
// are kept with their error so the form can show them.
func (r *Record) LogDrug(c clock.Clock, in DrugLogInput) DrugLogEntry {
	res := clinicalcalc.ValidateDrugDose(c, in.Name, in.Dose, in.Unit)
	unit := in.Unit
	if unit == "" {
		unit = clinicalcalc.DefaultDoseUnit
	}
	e := DrugLogEntry{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Time:          res.Timestamp,
		Dose:          in.Dose,
		Unit:          unit,
		Used:          in.Used,
		Wasted:        in.Wasted,
		Witness:       in.Witness,
		Initials:      in.Initials,
		FormattedDose: res.FormattedDose,
		Error:         res.Error,
	}
	r.Medications.LoggedDrugs = append(r.Medications.LoggedDrugs, e)
	return e
}
