package fieldcheck

import (
	"fmt"
	"math"
	"strconv"
)

// Severity is how a checked value is flagged in the form.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// RuleType names one of the predicates.
type RuleType string

const (
	RuleRequired RuleType = "required"
	RuleNumeric  RuleType = "numeric"
	RulePositive RuleType = "positive"
	RuleRange    RuleType = "range"
	RuleEmail    RuleType = "email"
	RulePhone    RuleType = "phone"
)

// Rule configures a single input check. Min and Max are only read for
// RuleRange; a range rule missing either bound always passes.
type Rule struct {
	Type RuleType `json:"type"`
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// Result is the outcome of Check. Message is empty when the value is valid.
type Result struct {
	Valid    bool     `json:"valid"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// Check applies rule to the raw input text. Unknown rule types pass.
func Check(rule Rule, value string) Result {
	var (
		valid = true
		msg   string
	)

	switch rule.Type {
	case RuleRequired:
		valid = Required(value)
		msg = "This field is required"
	case RuleNumeric:
		valid = Numeric(value)
		msg = "Must be a valid number"
	case RulePositive:
		f, ok := ParseFloat(value)
		valid = ok && Positive(f)
		msg = "Must be a positive number"
	case RuleRange:
		if rule.Min != nil && rule.Max != nil {
			f, ok := ParseFloat(value)
			valid = ok && InRange(f, *rule.Min, *rule.Max)
			msg = fmt.Sprintf("Must be between %s and %s", formatBound(*rule.Min), formatBound(*rule.Max))
		}
	case RuleEmail:
		valid = Email(value)
		msg = "Must be a valid email address"
	case RulePhone:
		valid = Phone(value)
		msg = "Must be a valid phone number"
	}

	if !valid {
		return Result{Valid: false, Severity: SeverityError, Message: msg}
	}
	return Result{Valid: true, Severity: SeveritySuccess}
}

// Warn builds an informational result: the value is valid but worth a
// second look (e.g. NPO time beyond the policy maximum).
func Warn(message string) Result {
	return Result{Valid: true, Severity: SeverityWarning, Message: message}
}

func formatBound(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
