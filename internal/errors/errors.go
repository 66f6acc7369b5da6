// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrTimeout          = errors.New("operation timed out")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInputValidation  = errors.New("input validation failed")
	ErrNoScoreHistory   = errors.New("no daily scores available")
	ErrChallengeClosed  = errors.New("challenge is in a terminal state")
	ErrTriggerNotFound  = errors.New("mentor trigger not found")
	ErrSentimentMissing = errors.New("no cached sentiment for symbol")
)

// CollaboratorError represents a failure talking to an external
// collaborator (persistence, sentiment cache, narrative generator).
// Collaborator failures degrade to defaults and never hard-fail a score,
// badge, or challenge computation.
type CollaboratorError struct {
	Collaborator string
	Operation    string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator error [%s] %s: %v", e.Collaborator, e.Operation, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError creates a new CollaboratorError.
func NewCollaboratorError(collaborator, operation string, err error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Operation:    operation,
		Err:          err,
	}
}

// TemplateError represents a malformed challenge or badge definition.
// These are configuration-class violations and fail fast at load time.
type TemplateError struct {
	Kind    string
	Name    string
	Message string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error [%s] %s: %s", e.Kind, e.Name, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return ErrConfigInvalid
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(kind, name, message string) *TemplateError {
	return &TemplateError{
		Kind:    kind,
		Name:    name,
		Message: message,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a persistence-layer error.
type StoreError struct {
	Entity    string
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s] %s: %v", e.Entity, e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
