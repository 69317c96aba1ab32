package anesthesia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/anesthesia/internal/platform/snapshot"
	"github.com/ehr/anesthesia/pkg/clinicalcalc"
	"github.com/ehr/anesthesia/pkg/clock"
)

// ErrInvalidInput marks a request the service cannot act on. Clinical values
// are never rejected with it.
var ErrInvalidInput = errors.New("invalid input")

func invalid(err error) error { return fmt.Errorf("%w: %v", ErrInvalidInput, err) }

// EditRecorder counts applied edits per section.
type EditRecorder interface {
	RecordEdit(section string)
}

// TxFunc runs fn inside a transaction carried by the context it passes on.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func noTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type nopEditRecorder struct{}

func (nopEditRecorder) RecordEdit(string) {}

type Service struct {
	repo   Repository
	store  *snapshot.Store
	prop   *Propagator
	logger zerolog.Logger
	edits  EditRecorder

	// wall stamps drug log lines; display is the minute-refreshed clock
	// used for tracker entry times.
	wall    clock.Clock
	display clock.Clock

	locks recordLocks
	tx    TxFunc
}

type Option func(*Service)

func WithClocks(wall, display clock.Clock) Option {
	return func(s *Service) {
		if wall != nil {
			s.wall = wall
		}
		if display != nil {
			s.display = display
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithEditRecorder(r EditRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.edits = r
		}
	}
}

// WithTransactor runs each edit's load-modify-save in one transaction.
func WithTransactor(tx TxFunc) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func NewService(repo Repository, store *snapshot.Store, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		store:   store,
		prop:    NewPropagator(store),
		logger:  zerolog.Nop(),
		edits:   nopEditRecorder{},
		wall:    clock.System{},
		display: clock.System{},
		tx:      noTx,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// edit loads a record, applies fn and saves it while holding the record's
// lock. Nothing is saved when fn fails.
func (s *Service) edit(ctx context.Context, id uuid.UUID, section string, fn func(*Record) error) (*Record, error) {
	return s.editThen(ctx, id, section, func(rec *Record) (Effect, error) {
		return nil, fn(rec)
	})
}

// editThen is edit for changes that publish snapshots. The returned Effect
// runs only after the transaction has committed, still under the lock.
func (s *Service) editThen(ctx context.Context, id uuid.UUID, section string, fn func(*Record) (Effect, error)) (*Record, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	var (
		rec   *Record
		after Effect
	)
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		if rec, err = s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if after, err = fn(rec); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("update anesthesia record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if after != nil {
		after(ctx)
	}
	s.edits.RecordEdit(section)
	s.logger.Debug().Str("record_id", id.String()).Str("section", section).Msg("record updated")
	return rec, nil
}

// CreateRecord starts a blank record and applies any initial sections.
func (s *Service) CreateRecord(ctx context.Context, initial map[string]json.RawMessage) (*Record, error) {
	rec := NewRecord(s.wall.Now())
	for name, patch := range initial {
		if err := rec.MergeSection(name, patch); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create anesthesia record: %w", err)
	}
	var effects []Effect
	if _, ok := initial[SectionPatient]; ok {
		effects = append(effects, s.prop.PublishPatient(rec))
	}
	if rec.PreOpVitals.TakenDayOfProcedure {
		effects = append(effects, s.prop.PublishPreOpVitals(rec))
	}
	runEffects(ctx, effects)
	s.logger.Info().Str("record_id", rec.ID.String()).Msg("anesthesia record created")
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// GetView returns the record with every derived value computed now.
func (s *Service) GetView(ctx context.Context, id uuid.UUID) (*View, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewView(rec, s.wall.Now())
	return &v, nil
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// DeleteRecord removes the record and its snapshot slots.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.lock(id)
	defer unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.Remove(ctx, snapshot.RecordKey(id.String(), snapshot.KeyPreOpVitals))
	s.store.Remove(ctx, snapshot.RecordKey(id.String(), snapshot.KeyPatientInfo))
	return nil
}

// MergeSection applies a partial update to one section and runs the
// propagation the section triggers.
func (s *Service) MergeSection(ctx context.Context, id uuid.UUID, section string, patch json.RawMessage) (*Record, error) {
	return s.editThen(ctx, id, section, func(rec *Record) (Effect, error) {
		if err := rec.MergeSection(section, patch); err != nil {
			return nil, err
		}
		keys, _ := decodePatch(patch)
		switch section {
		case SectionPatient:
			return s.prop.PublishPatient(rec), nil
		case SectionPreOpVitals:
			if _, ok := keys["takenDayOfProcedure"]; ok {
				return s.prop.PublishPreOpVitals(rec), nil
			}
		case SectionDischargeScore:
			return nil, s.afterDischargeMerge(ctx, rec, keys)
		}
		return nil, nil
	})
}

func (s *Service) afterDischargeMerge(ctx context.Context, rec *Record, keys map[string]json.RawMessage) error {
	d := &rec.DischargeScore
	for _, v := range []int{d.Circulation, d.Ambulation, d.Respiration, d.Consciousness, d.Color} {
		if !ValidScore(v) {
			return invalid(fmt.Errorf("discharge scores must be 0, 1 or 2"))
		}
	}
	if _, ok := keys["circulation"]; ok {
		d.CirculationAuto = false
		return nil
	}
	if _, ok := keys["dischargeBloodPressure"]; ok {
		s.prop.SetDischargeBloodPressure(ctx, rec, string(d.DischargeBloodPressure))
	}
	return nil
}

// SetTakenDayOfProcedure sets or clears the flag and publishes or removes the
// pre-op vitals slot.
func (s *Service) SetTakenDayOfProcedure(ctx context.Context, id uuid.UUID, taken bool) (*Record, error) {
	return s.editThen(ctx, id, SectionPreOpVitals, func(rec *Record) (Effect, error) {
		return s.prop.SetTakenDayOfProcedure(rec, taken), nil
	})
}

// LoadIntraOpVitals copies published pre-op vitals into the intra-op vitals.
// loaded is false when no snapshot was available; the record is then
// returned unchanged.
func (s *Service) LoadIntraOpVitals(ctx context.Context, id uuid.UUID) (rec *Record, loaded bool, err error) {
	rec, err = s.edit(ctx, id, SectionVitals, func(rec *Record) error {
		loaded = s.prop.LoadIntraOpVitals(ctx, rec)
		return nil
	})
	return rec, loaded, err
}

// LoadPreOpVitals fills pre-op height and weight from the patient info slot.
func (s *Service) LoadPreOpVitals(ctx context.Context, id uuid.UUID) (rec *Record, loaded bool, err error) {
	rec, err = s.edit(ctx, id, SectionPreOpVitals, func(rec *Record) error {
		loaded = s.prop.LoadPreOpVitals(ctx, rec)
		return nil
	})
	return rec, loaded, err
}

type WeightInput struct {
	Value string                  `json:"value"`
	Unit  clinicalcalc.WeightUnit `json:"unit"`
}

func (s *Service) SetPreOpWeight(ctx context.Context, id uuid.UUID, in WeightInput) (*Record, error) {
	return s.editThen(ctx, id, SectionPreOpVitals, func(rec *Record) (Effect, error) {
		after, err := s.prop.SetPreOpWeight(rec, in.Value, in.Unit)
		if err != nil {
			return nil, invalid(err)
		}
		return after, nil
	})
}

// HeightInput is either a value with unit inches|cm, or feet and inches.
type HeightInput struct {
	Value  string `json:"value"`
	Unit   string `json:"unit"`
	Feet   *int   `json:"feet"`
	Inches *int   `json:"inches"`
}

func (s *Service) SetPreOpHeight(ctx context.Context, id uuid.UUID, in HeightInput) (*Record, error) {
	return s.editThen(ctx, id, SectionPreOpVitals, func(rec *Record) (Effect, error) {
		var (
			after Effect
			err   error
		)
		if in.Feet != nil || in.Inches != nil {
			var feet, inches int
			if in.Feet != nil {
				feet = *in.Feet
			}
			if in.Inches != nil {
				inches = *in.Inches
			}
			after, err = s.prop.SetPreOpFeetInches(rec, feet, inches)
		} else {
			after, err = s.prop.SetPreOpHeight(rec, in.Value, in.Unit)
		}
		if err != nil {
			return nil, invalid(err)
		}
		return after, nil
	})
}

// SetDischargeBloodPressure stores the discharge reading and derives the
// circulation score when a pre-op reading was published.
func (s *Service) SetDischargeBloodPressure(ctx context.Context, id uuid.UUID, bp string) (*Record, error) {
	return s.edit(ctx, id, SectionDischargeScore, func(rec *Record) error {
		s.prop.SetDischargeBloodPressure(ctx, rec, bp)
		return nil
	})
}

// SetCirculation records a manual circulation score.
func (s *Service) SetCirculation(ctx context.Context, id uuid.UUID, score int) (*Record, error) {
	return s.SetDischargeScores(ctx, id, DischargeScoresInput{Circulation: &score})
}

func (s *Service) SetDischargeScores(ctx context.Context, id uuid.UUID, in DischargeScoresInput) (*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	return s.edit(ctx, id, SectionDischargeScore, func(rec *Record) error {
		in.Apply(&rec.DischargeScore)
		return nil
	})
}

func (s *Service) AddDraft(ctx context.Context, id uuid.UUID, category string) (PrescribedMedication, error) {
	var d PrescribedMedication
	_, err := s.edit(ctx, id, SectionMedicationPrescriptions, func(rec *Record) error {
		var err error
		if d, err = rec.AddDraft(category); err != nil {
			return invalid(err)
		}
		return nil
	})
	return d, err
}

func (s *Service) UpdateDraft(ctx context.Context, id uuid.UUID, draftID string, patch json.RawMessage) (PrescribedMedication, error) {
	var d PrescribedMedication
	_, err := s.edit(ctx, id, SectionMedicationPrescriptions, func(rec *Record) error {
		var err error
		d, err = rec.UpdateDraft(draftID, patch)
		return err
	})
	return d, err
}

func (s *Service) DeleteDraft(ctx context.Context, id uuid.UUID, draftID string) error {
	_, err := s.edit(ctx, id, SectionMedicationPrescriptions, func(rec *Record) error {
		return rec.DeleteDraft(draftID)
	})
	return err
}

// SubmitDraft moves a draft prescription into the log.
func (s *Service) SubmitDraft(ctx context.Context, id uuid.UUID, draftID string) (MedicationLogEntry, error) {
	var e MedicationLogEntry
	_, err := s.edit(ctx, id, SectionMedicationPrescriptions, func(rec *Record) error {
		var err error
		e, err = rec.SubmitDraft(draftID)
		return err
	})
	return e, err
}

func (s *Service) AddMedication(ctx context.Context, id uuid.UUID, in MedicationInput) (MedicationEntry, error) {
	if err := in.Validate(); err != nil {
		return MedicationEntry{}, invalid(err)
	}
	var e MedicationEntry
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		e = rec.AddMedication(in, s.display.Now())
		return nil
	})
	return e, err
}

func (s *Service) UpdateMedication(ctx context.Context, id uuid.UUID, entryID string, patch json.RawMessage) (MedicationEntry, error) {
	var e MedicationEntry
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		var err error
		e, err = rec.UpdateMedication(entryID, patch)
		return err
	})
	return e, err
}

func (s *Service) RemoveMedication(ctx context.Context, id uuid.UUID, entryID string) error {
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		return rec.RemoveMedication(entryID)
	})
	return err
}

func (s *Service) MedicationTotals(ctx context.Context, id uuid.UUID) ([]MedicationTotal, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return MedicationTotals(rec.IntraOpTracker.Medications), nil
}

func (s *Service) AddLocalAnesthetic(ctx context.Context, id uuid.UUID, in LocalAnestheticInput) (LocalAnestheticEntry, error) {
	if err := in.Validate(); err != nil {
		return LocalAnestheticEntry{}, invalid(err)
	}
	var e LocalAnestheticEntry
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		e = rec.AddLocalAnesthetic(in, s.display.Now())
		return nil
	})
	return e, err
}

func (s *Service) UpdateLocalAnesthetic(ctx context.Context, id uuid.UUID, entryID string, patch json.RawMessage) (LocalAnestheticEntry, error) {
	var e LocalAnestheticEntry
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		var err error
		e, err = rec.UpdateLocalAnesthetic(entryID, patch)
		return err
	})
	return e, err
}

func (s *Service) RemoveLocalAnesthetic(ctx context.Context, id uuid.UUID, entryID string) error {
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		return rec.RemoveLocalAnesthetic(entryID)
	})
	return err
}

func (s *Service) AddConsciousness(ctx context.Context, id uuid.UUID, score int) (ConsciousnessEntry, error) {
	var e ConsciousnessEntry
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		var err error
		if e, err = rec.AddConsciousness(score, s.display.Now()); err != nil {
			return invalid(err)
		}
		return nil
	})
	return e, err
}

func (s *Service) RemoveConsciousness(ctx context.Context, id uuid.UUID, entryID string) error {
	_, err := s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		return rec.RemoveConsciousness(entryID)
	})
	return err
}

func (s *Service) UpdateGas(ctx context.Context, id uuid.UUID, gas string, patch json.RawMessage) (*Record, error) {
	return s.edit(ctx, id, SectionIntraOpTracker, func(rec *Record) error {
		return rec.UpdateGas(gas, patch)
	})
}

// LogDrug appends a generic drug log line stamped with the wall clock.
func (s *Service) LogDrug(ctx context.Context, id uuid.UUID, in DrugLogInput) (DrugLogEntry, error) {
	if err := in.Validate(); err != nil {
		return DrugLogEntry{}, invalid(err)
	}
	var e DrugLogEntry
	_, err := s.edit(ctx, id, SectionMedications, func(rec *Record) error {
		e = rec.LogDrug(s.wall, in)
		return nil
	})
	return e, err
}

// Print renders a read-only text summary of the record.
func (s *Service) Print(ctx context.Context, id uuid.UUID) ([]byte, error) {
	v, err := s.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	return RenderPrint(*v)
}

// Clocks returns the wall clock and the display clock.
func (s *Service) Clocks() (wall, display clock.Clock) {
	return s.wall, s.display
}
