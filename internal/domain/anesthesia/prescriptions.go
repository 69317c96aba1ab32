package anesthesia

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PrescriptionTemplate is a pre-written prescription line.
type PrescriptionTemplate struct {
	Name            string `json:"name"`
	DefaultQuantity int    `json:"defaultQuantity"`
}

var prescriptionTemplates = map[string][]PrescriptionTemplate{
	CategoryAntibiotic: {
		{"Amoxicillin 500mg # Ṫ PO TID until gone", 30},
		{"Keflex 500mg # Ṫ PO QID until gone", 28},
		{"Z-pak #1 Pack Take as Directed", 1},
		{"Clindamycin 300mg # Ṫ PO QID until gone", 28},
		{"Azithromycin 250mg # ṪṪ PO stat then Ṫ PO QID until gone", 6},
		{"Augmentin 500mg # Ṫ PO TID until gone", 30},
		{"Keflex Susp 250mg/5cc 2 teaspoons PO QID until gone # CC", 100},
	},
	CategoryPain: {
		{"Norco 5/325mg Tab # 20 Ṫ-ṪṪ PO QID prn pain", 20},
		{"Norco 7.5/325mg Tab # Ṫ-ṪṪ PO QID prn pain", 20},
		{"Hydrocodone/Tylenol Susp 1-2 Tbsp PO QID prn pain 7.5mg/325mg/15mL CC", 120},
		{"Ultram 50mg Tab # Ṫ PO QID prn pain", 30},
		{"Tylenol #3 # Ṫ-ṪṪ PO QID prn pain", 30},
		{"Motrin 800mg Tab # 50 Ṫ PO TID prn pain", 50},
	},
	CategoryOther: {
		{"Peridex 0.12% Oral Rinse Rinse c T TBSP PO for one #473 CC min, then spit BID", 473},
		{"Zofran 8mg ODT # Dissolve Ṫ SL Q8° prn N/V", 10},
		{"Sudafed 120mg Tab # 14 Ṫ PO Q12° prn congestion", 14},
		{"Afrin Nasal Spray 2 sprays each nostril BID # 1 bottle x3-5 days prn congestion", 1},
	},
}

var categoryNames = map[string]string{
	CategoryAntibiotic: "Antibiotics",
	CategoryPain:       "Pain Medications",
	CategoryOther:      "Other Medications",
}

// PrescriptionTemplates returns the templates of a category, nil when the
// category is unknown.
func PrescriptionTemplates(category string) []PrescriptionTemplate {
	return prescriptionTemplates[category]
}

func CategoryDisplayName(category string) string { return categoryNames[category] }

func templateQuantity(category, name string) (int, bool) {
	for _, t := range prescriptionTemplates[category] {
		if t.Name == name {
			return t.DefaultQuantity, true
		}
	}
	return 0, false
}

// AddDraft starts a draft prescription from the category's first template.
func (r *Record) AddDraft(category string) (PrescribedMedication, error) {
	templates := prescriptionTemplates[category]
	if len(templates) == 0 {
		return PrescribedMedication{}, fmt.Errorf("category must be one of antibiotic, pain, other")
	}
	d := PrescribedMedication{
		ID:         uuid.NewString(),
		Name:       templates[0].Name,
		Category:   category,
		Prescribed: true,
		Quantity:   templates[0].DefaultQuantity,
	}
	r.MedicationPrescriptions.SelectedCategory = category
	r.MedicationPrescriptions.DraftMedications = append(r.MedicationPrescriptions.DraftMedications, d)
	return d, nil
}

// UpdateDraft patches a draft. Selecting another template by name also resets
// the quantity to that template's default unless the patch sets one.
func (r *Record) UpdateDraft(id string, patch json.RawMessage) (PrescribedMedication, error) {
	fields, err := decodePatch(patch)
	if err != nil {
		return PrescribedMedication{}, err
	}
	drafts := r.MedicationPrescriptions.DraftMedications
	for i, d := range drafts {
		if d.ID != id {
			continue
		}
		delete(fields, "id")
		delete(fields, "category")
		next, err := overlay(d, fields)
		if err != nil {
			return PrescribedMedication{}, err
		}
		if _, quantitySet := fields["quantity"]; !quantitySet && next.Name != d.Name {
			if q, ok := templateQuantity(next.Category, next.Name); ok {
				next.Quantity = q
			}
		}
		drafts[i] = next
		return next, nil
	}
	return PrescribedMedication{}, ErrDraftNotFound
}

func (r *Record) DeleteDraft(id string) error {
	out, err := removeEntry(r.MedicationPrescriptions.DraftMedications, id, func(d PrescribedMedication) string { return d.ID })
	if err != nil {
		return ErrDraftNotFound
	}
	r.MedicationPrescriptions.DraftMedications = out
	return nil
}

// SubmitDraft moves a draft into the prescription log under a new id. There
// is no way back.
func (r *Record) SubmitDraft(id string) (MedicationLogEntry, error) {
	rx := &r.MedicationPrescriptions
	for i, d := range rx.DraftMedications {
		if d.ID != id {
			continue
		}
		entry := MedicationLogEntry{
			ID:       uuid.NewString(),
			Name:     d.Name,
			Category: d.Category,
			Quantity: d.Quantity,
			Refills:  d.Refills,
			Notes:    d.Notes,
		}
		rx.MedicationLog = append(rx.MedicationLog, entry)
		rx.DraftMedications = append(rx.DraftMedications[:i:i], rx.DraftMedications[i+1:]...)
		return entry, nil
	}
	return MedicationLogEntry{}, ErrDraftNotFound
}
