package clinicalcalc

// LocalAnestheticType names a dental local anesthetic.
type LocalAnestheticType string

const (
	Articaine   LocalAnestheticType = "articaine"
	Bupivicaine LocalAnestheticType = "bupivicaine"
	Mepivicaine LocalAnestheticType = "mepivicaine"
	Lidocaine   LocalAnestheticType = "lidocaine"
)

// EpinephrineNone marks a plain (no epinephrine) cartridge.
const EpinephrineNone = "none"

var anesthetics = map[LocalAnestheticType]struct {
	name    string
	carpule float64
}{
	Articaine:   {"Articaine", 1.7},
	Bupivicaine: {"Bupivicaine", 1.7},
	Mepivicaine: {"Mepivicaine", 1.7},
	Lidocaine:   {"Lidocaine", 1.7},
}

// Valid reports whether t is a known anesthetic.
func (t LocalAnestheticType) Valid() bool {
	_, ok := anesthetics[t]
	return ok
}

// CarpuleVolume is the millilitres per cartridge, 0 for an unknown type.
func CarpuleVolume(t LocalAnestheticType) float64 { return anesthetics[t].carpule }

// TotalVolume is carpules times the cartridge volume.
func TotalVolume(t LocalAnestheticType, carpules float64) float64 {
	return carpules * CarpuleVolume(t)
}

// LocalAnestheticDisplayName renders e.g. "Articaine 4% c w/ 1:100k" or
// "Lidocaine 2% c w/o Epi".
func LocalAnestheticDisplayName(t LocalAnestheticType, concentration, epinephrine string) string {
	name := anesthetics[t].name
	if name == "" {
		name = string(t)
	}
	epi := "c w/ " + epinephrine
	if epinephrine == EpinephrineNone {
		epi = "c w/o Epi"
	}
	return name + " " + concentration + " " + epi
}

var consciousness = map[int][2]string{
	1: {"Unresponsive", "No response to stimuli"},
	2: {"Responds to pain", "Withdraws from painful stimuli"},
	3: {"Responds to voice", "Opens eyes to voice"},
	4: {"Alert but confused", "Awakens easily, follows commands"},
	5: {"Fully alert", "Alert, oriented, follows commands"},
}

// ConsciousnessDescription maps a 1-5 level of consciousness to its label.
func ConsciousnessDescription(score int) string {
	if c, ok := consciousness[score]; ok {
		return c[0]
	}
	return "Unknown"
}

// ConsciousnessResponse maps a 1-5 level of consciousness to the expected
// response.
func ConsciousnessResponse(score int) string {
	if c, ok := consciousness[score]; ok {
		return c[1]
	}
	return "Unknown response"
}
