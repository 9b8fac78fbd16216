package application

import (
	"errors"
	"fmt"
	"strings"

	"callscope/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "nodeID" -> "node ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"graph":      "graph name",
		"otherGraph": "other graph name",
		"nodeID":     "node ID",
		"neighborID": "neighbor ID",
		"edgeID":     "edge ID",
		"query":      "query",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateEdgeID checks that id has the form source->target.
// Returns a ValidationError wrapping ErrInvalidID otherwise.
func ValidateEdgeID(fieldName, id string) error {
	if _, _, err := domain.ParseEdgeID(id); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected source%starget, got: %s", domain.EdgeSeparator, id),
		}
	}
	return nil
}

// ValidateRelation checks that value names a neighbor relation
func ValidateRelation(fieldName, value string) (domain.Relation, error) {
	rel, err := domain.ParseRelation(value)
	if err != nil {
		return "", &ValidationError{Field: fieldName, Message: err.Error()}
	}
	return rel, nil
}

// ValidatePositive checks that n is greater than zero
func ValidatePositive(fieldName string, n int) error {
	if n <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be positive, got %d", formatFieldName(fieldName), n),
		}
	}
	return nil
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
