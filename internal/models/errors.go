package models

import "fmt"

// ValidationError reports a scenario-level invariant violation: attribute
// weights that do not sum to 1, an agreement vector missing a weighted
// issue, or an out-of-range scalar. It is surfaced to the caller
// immediately; the engine never substitutes defaults.
type ValidationError struct {
	Party  string // party ID (or name when no ID is set)
	Field  string // dotted path of the offending field
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Party == "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation: party %s: %s: %s", e.Party, e.Field, e.Reason)
}
