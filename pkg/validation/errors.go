package validation

import (
	"fmt"
	"strings"
)

// FieldViolation describes one field that failed a rule. Field uses the JSON path of the
// payload, e.g. "coordinates[0].latitude".
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of a payload, not only the first one.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation and returns the receiver, creating it when nil.
func (e *ValidationError) Add(field, rule, message string) *ValidationError {
	if e == nil {
		e = &ValidationError{}
	}
	e.Violations = append(e.Violations, FieldViolation{Field: field, Rule: rule, Message: message})
	return e
}

// InvalidIdentifierError is returned when a path parameter is not a valid store identifier.
type InvalidIdentifierError struct {
	Param string `json:"param"`
	Value string `json:"value"`
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier for parameter %q: %q", e.Param, e.Value)
}
