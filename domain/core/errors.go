package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrInvalidResponseVariable = errors.New("invalid response variable")
	ErrUnknownGroup            = errors.New("comparison references unknown group")
	ErrEmptyDataset            = errors.New("dataset contains no measurements")
	ErrClusterSpansGroups      = errors.New("image id appears in more than one group")

	// Model fitting errors
	ErrModelFitFailure = errors.New("mixed model fit failed")
)

// Error constructors with context
func NewInvalidResponseError(requested string, allowed []string) error {
	return fmt.Errorf("%w: %q is not one of %v", ErrInvalidResponseVariable, requested, allowed)
}

func NewUnknownGroupError(group1, group2 string) error {
	return fmt.Errorf("%w: comparison (%s, %s)", ErrUnknownGroup, group1, group2)
}

func NewModelFitError(diagnostic string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelFitFailure, diagnostic, cause)
	}
	return fmt.Errorf("%w: %s", ErrModelFitFailure, diagnostic)
}

// Error checking helpers
func IsInvalidResponseError(err error) bool {
	return errors.Is(err, ErrInvalidResponseVariable)
}

func IsUnknownGroupError(err error) bool {
	return errors.Is(err, ErrUnknownGroup)
}

func IsModelFitError(err error) bool {
	return errors.Is(err, ErrModelFitFailure)
}
