package handlers

import (
	"fmt"
	"strings"
)

// requiredField pairs a field name with whether the submission is missing it
type requiredField struct {
	name    string
	missing bool
}

// missingFields collects the names of all missing fields, in declaration
// order, so validation errors always report the complete list
func missingFields(checks []requiredField) []string {
	var out []string
	for _, c := range checks {
		if c.missing {
			out = append(out, c.name)
		}
	}
	return out
}

func missingFieldsError(fields []string) error {
	return fmt.Errorf("missing: %s", strings.Join(fields, ", "))
}
