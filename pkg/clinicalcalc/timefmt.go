package clinicalcalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatHHMM renders 24-hour "HH:MM".
func FormatHHMM(t time.Time) string { return t.Format("15:04") }

// FormatHHMMSS renders 24-hour "HH:MM:SS".
func FormatHHMMSS(t time.Time) string { return t.Format("15:04:05") }

// FormatCompactHHMM renders "HHMM" as used by the intra-op tracker.
func FormatCompactHHMM(t time.Time) string { return t.Format("1504") }

// ParseHHMM sets the hour and minute of "HH:MM" on the date of day, with
// seconds cleared.
func ParseHHMM(s string, day time.Time) (time.Time, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return time.Time{}, fmt.Errorf("time %q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", s)
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, day.Location()), nil
}
