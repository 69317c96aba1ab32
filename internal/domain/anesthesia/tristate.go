package anesthesia

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ehr/anesthesia/pkg/fieldcheck"
)

// TriState is a yes/no answer that may not have been given yet. It is null,
// true or false on the wire.
type TriState int8

const (
	Unset TriState = iota
	Yes
	No
)

func (t TriState) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unset"
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *TriState) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "null":
		*t = Unset
	case "true":
		*t = Yes
	case "false":
		*t = No
	default:
		return fmt.Errorf("tri-state must be true, false or null, got %s", b)
	}
	return nil
}

// Reading is a manually entered measurement kept exactly as typed. It accepts
// a JSON string or number and is written back as a string.
type Reading string

func (r *Reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null":
		*r = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Reading(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("reading must be a string or number, got %s", b)
	}
	*r = Reading(n.String())
	return nil
}

// Float parses the leading number of the reading.
func (r Reading) Float() (float64, bool) {
	return fieldcheck.ParseFloat(string(r))
}
