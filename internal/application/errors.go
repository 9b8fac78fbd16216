package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrGraphNotFound    = errors.New("graph not found")
	ErrDiffRunning      = errors.New("diff already running")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DiffError represents a failed comparison job
type DiffError struct {
	Graph   string
	Other   string
	Message string
}

func (e *DiffError) Error() string {
	if e.Other == "" {
		return fmt.Sprintf("diff of %s failed: %s", e.Graph, e.Message)
	}
	return fmt.Sprintf("diff of %s against %s failed: %s", e.Graph, e.Other, e.Message)
}
