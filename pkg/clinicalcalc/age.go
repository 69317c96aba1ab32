package clinicalcalc

import (
	"time"
)

// DateLayout is the wire format for dates of birth and LMP dates.
const DateLayout = "2006-01-02"

// Age is a patient age in whole years plus the total whole months lived.
type Age struct {
	Years  int `json:"age"`
	Months int `json:"ageInMonths"`
}

// CalculateAge returns the age on now's calendar date for a YYYY-MM-DD date
// of birth. An empty, unparsable or future date of birth yields zero.
func CalculateAge(dob string, now time.Time) Age {
	if dob == "" {
		return Age{}
	}
	birth, err := time.ParseInLocation(DateLayout, dob, now.Location())
	if err != nil {
		return Age{}
	}
	return AgeAt(birth, now)
}

// AgeAt is CalculateAge for an already parsed birth date. A year is only
// counted once the birth month/day has been reached.
func AgeAt(birth, now time.Time) Age {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	today := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	if time.Date(by, bm, bd, 0, 0, 0, 0, now.Location()).After(today) {
		return Age{}
	}

	months := (ny-by)*12 + int(nm-bm)
	if nd < bd {
		months--
	}
	if months < 0 {
		months = 0
	}
	return Age{Years: months / 12, Months: months}
}
