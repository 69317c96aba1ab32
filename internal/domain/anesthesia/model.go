package anesthesia

import (
	"time"

	"github.com/google/uuid"
)

// Record is one anesthesia and pre-operative documentation form. Only raw
// inputs are stored; age, BMI, totals and checklist completion are computed
// on read (see Derive).
type Record struct {
	ID   uuid.UUID `json:"id"`
	Date string    `json:"date"`
	Time string    `json:"time"`

	Patient PatientInfo `json:"patient"`

	// Pre-op
	PreOpAssessment         PreOpAssessment         `json:"preOpAssessment"`
	PatientAssessment       PatientAssessment       `json:"patientAssessment"`
	MedicalReview           MedicalReview           `json:"medicalReview"`
	PreOpVitals             PreOpVitals             `json:"preOpVitals"`
	PreOpInstructions       PreOpInstructions       `json:"preOpInstructions"`
	AnesthesiaType          AnesthesiaType          `json:"anesthesiaType"`
	PreOpChecklist          PreOpChecklist          `json:"preOpChecklist"`
	MedicationPrescriptions MedicationPrescriptions `json:"medicationPrescriptions"`

	// Intra-op
	Vitals            Vitals                 `json:"vitals"`
	Monitoring        Monitoring             `json:"monitoring"`
	NitrousOxide      NitrousOxide           `json:"nitrousOxide"`
	IVAccess          IVAccess               `json:"ivAccess"`
	Medications       Medications            `json:"medications"`
	IntraOpTracker    IntraOpTracker         `json:"intraOpTracker"`
	SurgicalProcedure SurgicalProcedure      `json:"surgicalProcedure"`
	LocalAnesthetic   LocalAnestheticSummary `json:"localAnesthetic"`
	FluidManagement   FluidManagement        `json:"fluidManagement"`
	AirwayProtection  AirwayProtection       `json:"airwayProtection"`
	TimeSummary       TimeSummary            `json:"timeSummary"`

	// Post-op
	DischargeScore     DischargeScore     `json:"dischargeScore"`
	PostOpInstructions PostOpInstructions `json:"postOpInstructions"`

	Signatures Signatures `json:"signatures"`

	Notes      string `json:"notes"`
	PageNumber int    `json:"pageNumber"`
	TotalPages int    `json:"totalPages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PatientInfo holds demographics. Weight is kilograms, height is inches.
type PatientInfo struct {
	Name    string  `json:"name"`
	DOB     string  `json:"dob"`
	Weight  float64 `json:"weight"`
	Height  float64 `json:"height"`
	Sex     string  `json:"sex"`
	LMPDate string  `json:"lmpDate,omitempty"`
}

// ClinicalAssessment is shared by the pre-op and patient assessments.
type ClinicalAssessment struct {
	ASA         int      `json:"asa"`
	Mallampatti int      `json:"mallampatti"`
	NPOHours    float64  `json:"npoHours"`
	Heart       string   `json:"heart"`
	Lungs       string   `json:"lungs"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`

	MedicalClearance     bool `json:"medicalClearance"`
	ConsentSigned        bool `json:"consentSigned"`
	QuestionsAnswered    bool `json:"questionsAnswered"`
	InformedConsentVideo bool `json:"informedConsentVideo"`
	PostOpVideo          bool `json:"postOpVideo"`
	PreProcedureTimeOut  bool `json:"preProcedureTimeOut"`

	PediatricPatient  TriState `json:"pediatricPatient"`
	HighRiskPatient   TriState `json:"highRiskPatient"`
	LungsAuscultated  TriState `json:"lungsAuscultated"`
	LungsCTAB         bool     `json:"lungsCTAB"`
	LungsOther        string   `json:"lungsOther"`
	HeartAuscultated  TriState `json:"heartAuscultated"`
	HeartRRR          bool     `json:"heartRRR"`
	HeartOther        string   `json:"heartOther"`
	NPOStatusVerified TriState `json:"npoStatusVerified"`
	NPOEightHours     bool     `json:"npoEightHours"`
	NPOSixHours       bool     `json:"npoSixHours"`
	NPOOther          string   `json:"npoOther"`
}

type PreOpAssessment struct {
	ClinicalAssessment

	PatientIdentified          bool `json:"patientIdentified"`
	RBCAltReviewed             bool `json:"rbcAltReviewed"`
	WrittenVerbalConsentsGiven bool `json:"writtenVerbalConsentsGiven"`
	ReviewedProcedureIVPreOp   bool `json:"reviewedProcedureIvPreOp"`
	PreRinsePeridex            bool `json:"preRinsePeridex"`

	SpecialConsiderationsNotes string `json:"specialConsiderationsNotes"`
}

// Checklist returns the assessment checklist items in form order.
func (a PreOpAssessment) Checklist() []bool {
	return []bool{
		a.PatientIdentified,
		a.RBCAltReviewed,
		a.WrittenVerbalConsentsGiven,
		a.ReviewedProcedureIVPreOp,
		a.PreRinsePeridex,
		a.MedicalClearance,
		a.ConsentSigned,
		a.QuestionsAnswered,
		a.InformedConsentVideo,
		a.PostOpVideo,
		a.PreProcedureTimeOut,
	}
}

type PatientAssessment struct {
	ClinicalAssessment
	Notes string `json:"notes"`
}

type MedicalReview struct {
	MedicalHistoryReviewed            TriState `json:"medicalHistoryReviewed"`
	AllergiesReviewed                 TriState `json:"allergiesReviewed"`
	SurgicalAnesthesiaHistoryReviewed TriState `json:"surgicalAnesthesiaHistoryReviewed"`
	FamilyHistoryReviewed             TriState `json:"familyHistoryReviewed"`
	MedicationsReviewed               TriState `json:"medicationsReviewed"`
	DiabeticMedication                bool     `json:"diabeticMedication"`
	Anticoagulant                     bool     `json:"anticoagulant"`
	Immunosuppressive                 bool     `json:"immunosuppressive"`
	Bisphosphonates                   bool     `json:"bisphosphonates"`
	MedicationModifications           TriState `json:"medicationModifications"`
	MedicalConsultReviewed            TriState `json:"medicalConsultReviewed"`
	MedicalConsultNA                  bool     `json:"medicalConsultNA"`
	Notes                             string   `json:"notes"`
}

// Sedation levels.
const (
	SedationNitrous = "nitrous"
	SedationLevel1  = "level1"
	SedationLevel2  = "level2"
	SedationLevel3  = "level3"
)

// PreOpVitals keeps every value as the display string typed on the form.
type PreOpVitals struct {
	TimeoutVerification bool   `json:"timeoutVerification"`
	SurgeonName         string `json:"surgeonName"`
	SedationBySurgeon   bool   `json:"sedationBySurgeon"`
	SedationLevel       string `json:"sedationLevel"`

	TakenDayOfProcedure bool `json:"takenDayOfProcedure"`

	Height          string `json:"height"`
	WeightLbs       string `json:"weightLbs"`
	WeightKg        string `json:"weightKg"`
	BloodPressure   string `json:"bloodPressure"`
	Pulse           string `json:"pulse"`
	SpO2            string `json:"spo2"`
	RespiratoryRate string `json:"respiratoryRate"`
	FSBG            string `json:"fsbg"`
	Time            string `json:"time"`

	EquipmentDate        string `json:"equipmentDate"`
	EquipmentCompletedBy string `json:"equipmentCompletedBy"`
	EquipmentNotes       string `json:"equipmentNotes"`
}

type PreOpInstructions struct {
	PreOpInstructions  bool   `json:"preOpInstructions"`
	PostOpInstructions bool   `json:"postOpInstructions"`
	AdditionalNotes    string `json:"additionalNotes"`
}

type AnesthesiaType struct {
	IVSedation      bool `json:"ivSedation"`
	OralSedation    bool `json:"oralSedation"`
	NitrousOxide    bool `json:"nitrousOxide"`
	LocalAnesthesia bool `json:"localAnesthesia"`
}

type PreOpChecklist struct {
	Monitors           bool `json:"monitors"`
	Suction            bool `json:"suction"`
	Airway             bool `json:"airway"`
	IVSetup            bool `json:"ivSetup"`
	EmergencyKit       bool `json:"emergencyKit"`
	NitrousOxide       bool `json:"nitrousOxide"`
	EmergencyMeds      bool `json:"emergencyMeds"`
	Oxygen             bool `json:"oxygen"`
	AnesthesiaMonitors bool `json:"anesthesiaMonitors"`
}

func (c PreOpChecklist) Checklist() []bool {
	return []bool{
		c.Monitors, c.Suction, c.Airway, c.IVSetup, c.EmergencyKit,
		c.NitrousOxide, c.EmergencyMeds, c.Oxygen, c.AnesthesiaMonitors,
	}
}

// Vitals are the intra-op readings.
type Vitals struct {
	BloodPressure Reading `json:"bloodPressure"`
	Pulse         Reading `json:"pulse"`
	SpO2          Reading `json:"spo2"`
	Respiration   Reading `json:"respiration"`
	EtCO2         Reading `json:"etco2,omitempty"`
	FBG           Reading `json:"fbg,omitempty"`
}

type Monitoring struct {
	BloodPressureCuff bool `json:"bloodPressureCuff"`
	ECG               bool `json:"ecg"`
	PulseOximetry     bool `json:"pulseOximetry"`
	Respiration       bool `json:"respiration"`
	EtCO2             bool `json:"etco2"`
}

func (m Monitoring) Checklist() []bool {
	return []bool{m.BloodPressureCuff, m.ECG, m.PulseOximetry, m.Respiration, m.EtCO2}
}

type NitrousOxide struct {
	StartTime   string `json:"startTime"`
	InductTime  string `json:"inductTime"`
	EndTime     string `json:"endTime"`
	Maintenance string `json:"maintenance"`
	Recovered   bool   `json:"recovered"`
}

type IVAccess struct {
	Gauge    string `json:"gauge"`
	Location string `json:"location"`
	Side     string `json:"side"`
	Route    string `json:"route"`
}

// Medications is the intra-op medication block with its generic drug log.
type Medications struct {
	PreSedMeds struct {
		Halcion bool   `json:"halcion"`
		Dose    string `json:"dose"`
		Time    string `json:"time"`
	} `json:"preSedMeds"`
	Antiemetics struct {
		Zofran bool   `json:"zofran"`
		Other1 string `json:"other1"`
		Other2 string `json:"other2"`
	} `json:"antiemetics"`
	Oxygen struct {
		Rate  string `json:"rate"`
		Other string `json:"other"`
	} `json:"oxygen"`
	LoggedDrugs []DrugLogEntry `json:"loggedDrugs"`
}

// DrugLogEntry is one line of the generic drug log. Dose is kept as typed.
type DrugLogEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Time          string `json:"time"`
	Dose          string `json:"dose"`
	Unit          string `json:"unit"`
	Used          bool   `json:"used"`
	Wasted        bool   `json:"wasted"`
	Witness       string `json:"witness"`
	Initials      string `json:"initials"`
	FormattedDose string `json:"formattedDose,omitempty"`
	Error         string `json:"error,omitempty"`
}

// IntraOpTracker is the quick-entry medication, gas, consciousness and local
// anesthetic log.
type IntraOpTracker struct {
	Medications      []MedicationEntry      `json:"medicationEntries"`
	Gases            GasLog                 `json:"gases"`
	Consciousness    []ConsciousnessEntry   `json:"consciousness"`
	LocalAnesthetics []LocalAnestheticEntry `json:"localAnesthetics"`
}

// MedicationEntry is a quick-entry administration. Used and Wasted are kept
// as typed; the total is derived.
type MedicationEntry struct {
	ID      string  `json:"id"`
	Time    string  `json:"time"`
	Dose    float64 `json:"dose"`
	Unit    string  `json:"unit"`
	Route   string  `json:"route"`
	Used    string  `json:"used"`
	Wasted  string  `json:"wasted"`
	Witness string  `json:"witness"`
	Notes   string  `json:"notes"`
}

type GasLog struct {
	Oxygen struct {
		FlowRate *float64 `json:"flowRate,omitempty"`
	} `json:"oxygen"`
	Nitrous struct {
		StartTime   string `json:"startTime,omitempty"`
		EndTime     string `json:"endTime,omitempty"`
		Induction   string `json:"induction,omitempty"`
		Maintenance string `json:"maintenance,omitempty"`
		Recovery    bool   `json:"recovery,omitempty"`
	} `json:"nitrous"`
}

type ConsciousnessEntry struct {
	ID    string `json:"id"`
	Time  string `json:"time"`
	Score int    `json:"score"`
}

type LocalAnestheticEntry struct {
	ID            string  `json:"id"`
	Time          string  `json:"time"`
	Type          string  `json:"type"`
	Concentration string  `json:"concentration"`
	Epinephrine   string  `json:"epinephrine"`
	Carpules      float64 `json:"carpules"`
	Notes         string  `json:"notes,omitempty"`
}

// LocalAnestheticSummary is the per-agent checkbox block of the record.
type LocalAnestheticSummary struct {
	Articaine   bool    `json:"articaine"`
	Bupivicaine bool    `json:"bupivicaine"`
	Mepivicaine bool    `json:"mepivicaine"`
	Lidocaine   bool    `json:"lidocaine"`
	Carpules    float64 `json:"carpules"`
}

type SurgicalProcedure struct {
	Procedure     string   `json:"procedure"`
	Teeth         []string `json:"teeth"`
	Technique     []string `json:"technique"`
	Complications string   `json:"complications"`
	Notes         string   `json:"notes"`
}

type FluidManagement struct {
	LactatedRinger float64 `json:"lactatedRinger"`
	NormalSaline   float64 `json:"normalSaline"`
	Dextrose5      float64 `json:"dextrose5"`
	EBL            float64 `json:"ebl"`
}

type AirwayProtection struct {
	OropharyngealDrape bool `json:"oropharyngealDrape"`
	GauzePack          bool `json:"gauzePack"`
	BiteBlock          bool `json:"biteBlock"`
	TMJStabilization   bool `json:"tmjStabilization"`
}

type TimeSummary struct {
	AnesthesiaStart   string `json:"anesthesiaStart"`
	AnesthesiaEnd     string `json:"anesthesiaEnd"`
	OperationStart    string `json:"operationStart"`
	OperationEnd      string `json:"operationEnd"`
	AirwayMaintenance string `json:"airwayMaintenance"`
}

// DischargeScore is the five-part recovery score. The total is never stored;
// see Total.
type DischargeScore struct {
	Circulation     int  `json:"circulation"`
	Ambulation      int  `json:"ambulation"`
	Respiration     int  `json:"respiration"`
	Consciousness   int  `json:"consciousness"`
	Color           int  `json:"color"`
	CirculationAuto bool `json:"circulationAuto"`

	TimeDischarged         string  `json:"timeDischarged"`
	DischargeBloodPressure Reading `json:"dischargeBloodPressure,omitempty"`
	DischargePulse         Reading `json:"dischargePulse,omitempty"`
	DischargeSpO2          Reading `json:"dischargeSpO2,omitempty"`
	DischargeRespirations  Reading `json:"dischargeRespirations,omitempty"`
}

// Total is the live sum of the five sub-scores.
func (d DischargeScore) Total() int {
	return d.Circulation + d.Ambulation + d.Respiration + d.Consciousness + d.Color
}

type PostOpInstructions struct {
	Prescriptions []struct {
		Medication   string `json:"medication"`
		Dosage       string `json:"dosage"`
		Instructions string `json:"instructions"`
		Refill       bool   `json:"refill"`
	} `json:"prescriptions"`
	FollowUp struct {
		PRN      bool   `json:"prn"`
		OneWeek  bool   `json:"oneWeek"`
		TwoWeeks bool   `json:"twoWeeks"`
		OneMonth bool   `json:"oneMonth"`
		Other    string `json:"other"`
	} `json:"followUp"`
	Objectives string `json:"objectives"`
}

type Signatures struct {
	SurgeonName                 string `json:"surgeonName"`
	SurgeonSignature            string `json:"surgeonSignature"`
	AnesthesiaProviderName      string `json:"anesthesiaProviderName"`
	AnesthesiaProviderSignature string `json:"anesthesiaProviderSignature"`
	SurgicalAssistantName       string `json:"surgicalAssistantName"`
	SurgicalAssistantSignature  string `json:"surgicalAssistantSignature"`
}

// Prescription categories.
const (
	CategoryAntibiotic = "antibiotic"
	CategoryPain       = "pain"
	CategoryOther      = "other"
)

type MedicationPrescriptions struct {
	PMPReportVerified bool                   `json:"pmpReportVerified"`
	SelectedCategory  string                 `json:"selectedCategory"`
	DraftMedications  []PrescribedMedication `json:"draftMedications"`
	MedicationLog     []MedicationLogEntry   `json:"medicationLog"`
}

type PrescribedMedication struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Prescribed bool   `json:"prescribed"`
	Quantity   int    `json:"quantity"`
	Refills    int    `json:"refills"`
	Notes      string `json:"notes,omitempty"`
}

type MedicationLogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Refills  int    `json:"refills"`
	Notes    string `json:"notes,omitempty"`
}
