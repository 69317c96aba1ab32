package anesthesia

import (
	"context"
	"fmt"
	"math"

	"github.com/ehr/anesthesia/internal/platform/snapshot"
	"github.com/ehr/anesthesia/pkg/clinicalcalc"
	"github.com/ehr/anesthesia/pkg/fieldcheck"
)

// Height units accepted by pre-op vitals.
const (
	HeightInches = "inches"
	HeightCM     = "cm"
)

// VitalsSnapshot is the pre-op vitals slot. A nil field leaves the intra-op
// value alone when loaded.
type VitalsSnapshot struct {
	BloodPressure   *Reading `json:"bloodPressure"`
	Pulse           *Reading `json:"pulse"`
	SpO2            *Reading `json:"spo2"`
	RespiratoryRate *Reading `json:"respiratoryRate"`
}

// patientSlot is the part of the patient info slot pre-op vitals reads.
type patientSlot struct {
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

// Effect is a snapshot write that runs once the record edit has been saved.
type Effect func(ctx context.Context)

func runEffects(ctx context.Context, effects []Effect) {
	for _, e := range effects {
		if e != nil {
			e(ctx)
		}
	}
}

// Propagator copies designated values between sections through the shared
// snapshot store. Every read and write is best effort. Reads happen
// immediately; writes are returned as Effects for the caller to run after
// the record is saved.
type Propagator struct {
	store *snapshot.Store
}

func NewPropagator(store *snapshot.Store) *Propagator {
	return &Propagator{store: store}
}

func vitalsKey(r *Record) string  { return snapshot.RecordKey(r.ID.String(), snapshot.KeyPreOpVitals) }
func patientKey(r *Record) string { return snapshot.RecordKey(r.ID.String(), snapshot.KeyPatientInfo) }

// SetTakenDayOfProcedure sets the flag. Setting it publishes the current
// pre-op vitals; clearing it removes the published slot.
func (p *Propagator) SetTakenDayOfProcedure(r *Record, taken bool) Effect {
	r.PreOpVitals.TakenDayOfProcedure = taken
	return p.PublishPreOpVitals(r)
}

// PublishPreOpVitals writes or removes the vitals slot according to the
// takenDayOfProcedure flag. The slot content is taken from r now.
func (p *Propagator) PublishPreOpVitals(r *Record) Effect {
	key := vitalsKey(r)
	if !r.PreOpVitals.TakenDayOfProcedure {
		return func(ctx context.Context) { p.store.Remove(ctx, key) }
	}
	v := r.PreOpVitals
	bp, pulse, spo2, rr := Reading(v.BloodPressure), Reading(v.Pulse), Reading(v.SpO2), Reading(v.RespiratoryRate)
	snap := VitalsSnapshot{
		BloodPressure:   &bp,
		Pulse:           &pulse,
		SpO2:            &spo2,
		RespiratoryRate: &rr,
	}
	return func(ctx context.Context) { p.store.Save(ctx, key, snap) }
}

// LoadIntraOpVitals overwrites intra-op vitals with each value present in
// the vitals slot. Values already entered are replaced; nothing is restored
// if the slot later disappears.
func (p *Propagator) LoadIntraOpVitals(ctx context.Context, r *Record) bool {
	snap, ok := snapshot.Get[VitalsSnapshot](ctx, p.store, vitalsKey(r))
	if !ok {
		return false
	}
	if snap.BloodPressure != nil {
		r.Vitals.BloodPressure = *snap.BloodPressure
	}
	if snap.Pulse != nil {
		r.Vitals.Pulse = *snap.Pulse
	}
	if snap.SpO2 != nil {
		r.Vitals.SpO2 = *snap.SpO2
	}
	if snap.RespiratoryRate != nil {
		r.Vitals.Respiration = *snap.RespiratoryRate
	}
	return true
}

// PublishPatient replaces the patient info slot with the record's patient.
func (p *Propagator) PublishPatient(r *Record) Effect {
	key, pt := patientKey(r), r.Patient
	return func(ctx context.Context) { p.store.Save(ctx, key, pt) }
}

func (p *Propagator) mergePatient(r *Record, fields map[string]any) Effect {
	key := patientKey(r)
	return func(ctx context.Context) { p.store.Merge(ctx, key, fields) }
}

// LoadPreOpVitals fills the height and weight display fields from the patient
// info slot. Zero values in the slot leave the fields as they are.
func (p *Propagator) LoadPreOpVitals(ctx context.Context, r *Record) bool {
	pt, ok := snapshot.Get[patientSlot](ctx, p.store, patientKey(r))
	if !ok {
		return false
	}
	if pt.Height != 0 {
		r.PreOpVitals.Height = clinicalcalc.FormatNumber(clinicalcalc.RoundHalfUp(pt.Height))
	}
	if pt.Weight != 0 {
		r.PreOpVitals.WeightLbs = clinicalcalc.FormatNumber(clinicalcalc.KgToWholeLbs(pt.Weight))
		r.PreOpVitals.WeightKg = clinicalcalc.FormatNumber(pt.Weight)
	}
	return true
}

// SetPreOpWeight records a weight typed in kg or lbs, fills the other unit
// and merges the kilogram weight into the patient info slot.
func (p *Propagator) SetPreOpWeight(r *Record, value string, unit clinicalcalc.WeightUnit) (Effect, error) {
	num := parseOrZero(value)
	var kg float64
	switch unit {
	case clinicalcalc.Kilograms:
		r.PreOpVitals.WeightKg = value
		r.PreOpVitals.WeightLbs = clinicalcalc.FormatNumber(clinicalcalc.KgToWholeLbs(num))
		kg = num
	case clinicalcalc.Pounds:
		r.PreOpVitals.WeightLbs = value
		r.PreOpVitals.WeightKg = clinicalcalc.FormatNumber(clinicalcalc.LbsToKg(num))
		kg = clinicalcalc.ConvertWeight(num, clinicalcalc.Pounds, clinicalcalc.Kilograms)
	default:
		return nil, fmt.Errorf("unit must be kg or lbs")
	}
	return p.mergePatient(r, map[string]any{"weight": math.Max(0, clinicalcalc.Round1(kg))}), nil
}

// SetPreOpHeight records a height typed in inches or centimetres as whole
// inches and merges it into the patient info slot.
func (p *Propagator) SetPreOpHeight(r *Record, value string, unit string) (Effect, error) {
	num := parseOrZero(value)
	var inches float64
	switch unit {
	case HeightInches:
		inches = num
	case HeightCM:
		inches = clinicalcalc.InchesFromCM(num)
	default:
		return nil, fmt.Errorf("unit must be inches or cm")
	}
	whole := clinicalcalc.RoundHalfUp(inches)
	r.PreOpVitals.Height = clinicalcalc.FormatNumber(whole)
	return p.mergePatient(r, map[string]any{"height": math.Max(0, whole)}), nil
}

// SetPreOpFeetInches records a height entered as feet and inches.
func (p *Propagator) SetPreOpFeetInches(r *Record, feet, inches int) (Effect, error) {
	if feet < 0 || inches < 0 || inches > 11 {
		return nil, fmt.Errorf("invalid height: feet must be >= 0 and inches 0-11")
	}
	total := feet*12 + inches
	r.PreOpVitals.Height = fmt.Sprint(total)
	return p.mergePatient(r, map[string]any{"height": total}), nil
}

// SetDischargeBloodPressure stores the discharge reading and, when it can be
// compared with the published pre-op reading, sets an automatic circulation
// score. Otherwise circulation and its flag are left unchanged.
func (p *Propagator) SetDischargeBloodPressure(ctx context.Context, r *Record, bp string) bool {
	r.DischargeScore.DischargeBloodPressure = Reading(bp)
	snap, ok := snapshot.Get[VitalsSnapshot](ctx, p.store, vitalsKey(r))
	if !ok || snap.BloodPressure == nil {
		return false
	}
	score, ok := CirculationScore(string(*snap.BloodPressure), bp)
	if !ok {
		return false
	}
	r.DischargeScore.Circulation = score
	r.DischargeScore.CirculationAuto = true
	return true
}

func parseOrZero(s string) float64 {
	n, ok := fieldcheck.ParseFloat(s)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
