package domain

import "strings"

// MissingAttributesError reports which required federation attributes were
// absent or blank. It maps to an authentication rejection at the boundary.
type MissingAttributesError struct {
	Missing []string
}

func (e *MissingAttributesError) Error() string {
	return "missing required attributes: " + strings.Join(e.Missing, ", ")
}
