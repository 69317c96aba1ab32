package anesthesia

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var systolicPattern = regexp.MustCompile(`\s*(\d{2,3})\s*/?`)

// ParseSystolic returns the first two or three digit number of a blood
// pressure reading such as "120/80".
func ParseSystolic(bp string) (int, bool) {
	m := systolicPattern.FindStringSubmatch(bp)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// CirculationScore grades the change of systolic pressure from the pre-op
// reading to the discharge reading: within 20% scores 2, within 50% scores 1,
// anything larger 0. ok is false when either reading has no systolic value or
// the pre-op value is not positive.
func CirculationScore(preOpBP, dischargeBP string) (score int, ok bool) {
	pre, ok := ParseSystolic(preOpBP)
	if !ok || pre <= 0 {
		return 0, false
	}
	post, ok := ParseSystolic(dischargeBP)
	if !ok {
		return 0, false
	}
	diff := math.Abs(float64(post-pre)) / float64(pre) * 100
	switch {
	case diff <= 20:
		return 2, true
	case diff <= 50:
		return 1, true
	default:
		return 0, true
	}
}

// ValidScore reports whether s is a discharge sub-score.
func ValidScore(s int) bool { return s >= 0 && s <= 2 }

// DischargeScoresInput sets any of the five discharge sub-scores.
type DischargeScoresInput struct {
	Circulation   *int `json:"circulation"`
	Ambulation    *int `json:"ambulation"`
	Respiration   *int `json:"respiration"`
	Consciousness *int `json:"consciousness"`
	Color         *int `json:"color"`
}

func (in DischargeScoresInput) Validate() error {
	for name, v := range map[string]*int{
		"circulation":   in.Circulation,
		"ambulation":    in.Ambulation,
		"respiration":   in.Respiration,
		"consciousness": in.Consciousness,
		"color":         in.Color,
	} {
		if v != nil && !ValidScore(*v) {
			return fmt.Errorf("%s must be 0, 1 or 2", name)
		}
	}
	return nil
}

// Apply copies the given scores. A circulation score entered here is manual
// and clears the auto flag.
func (in DischargeScoresInput) Apply(d *DischargeScore) {
	if in.Circulation != nil {
		d.Circulation = *in.Circulation
		d.CirculationAuto = false
	}
	if in.Ambulation != nil {
		d.Ambulation = *in.Ambulation
	}
	if in.Respiration != nil {
		d.Respiration = *in.Respiration
	}
	if in.Consciousness != nil {
		d.Consciousness = *in.Consciousness
	}
	if in.Color != nil {
		d.Color = *in.Color
	}
}
