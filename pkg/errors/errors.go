// Package errors provides custom error types for the archsync system.
// These errors enable programmatic error checking with errors.Is and errors.As
// and carry enough context (symbol names, addresses, column names) to be shown
// to the user as-is.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the archsync system
var (
	// ErrMalformedBinary indicates the container format was not recognized or
	// a required section is absent or truncated
	ErrMalformedBinary = errors.New("malformed binary")

	// ErrDuplicateSymbol indicates two symbol table entries share a name but
	// disagree on their attributes
	ErrDuplicateSymbol = errors.New("duplicate symbol")

	// ErrDuplicateColumn indicates a column with the same name already exists
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrProtectedColumn indicates an attempt to delete or rename a built-in column
	ErrProtectedColumn = errors.New("protected column")

	// ErrUnresolvedChanges indicates a commit was attempted while changes are pending
	ErrUnresolvedChanges = errors.New("unresolved changes")

	// ErrAlreadyResolved indicates a change has already been approved or rejected
	ErrAlreadyResolved = errors.New("change already resolved")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// MalformedBinaryError describes why a binary could not be turned into a catalog.
type MalformedBinaryError struct {
	Section string // Section involved, empty when the container itself is bad
	Reason  string
	Err     error
}

// Error implements the error interface
func (e *MalformedBinaryError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("malformed binary: section %s: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("malformed binary: %s", e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *MalformedBinaryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedBinaryError) Is(target error) bool {
	return target == ErrMalformedBinary
}

// NewMalformedBinaryError creates a new MalformedBinaryError
func NewMalformedBinaryError(section, reason string, err error) *MalformedBinaryError {
	return &MalformedBinaryError{Section: section, Reason: reason, Err: err}
}

// DuplicateSymbolError reports two conflicting entries for the same symbol name.
type DuplicateSymbolError struct {
	Name          string
	FirstAddress  uint64
	FirstSize     uint64
	SecondAddress uint64
	SecondSize    uint64
}

// Error implements the error interface
func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate symbol %s: 0x%08x (size %d) conflicts with 0x%08x (size %d)",
		e.Name, e.FirstAddress, e.FirstSize, e.SecondAddress, e.SecondSize)
}

// Is implements errors.Is support
func (e *DuplicateSymbolError) Is(target error) bool {
	return target == ErrDuplicateSymbol
}

// ColumnError represents a rejected column mutation.
type ColumnError struct {
	Operation string // "add", "remove", "rename"
	Column    string
	Err       error // ErrDuplicateColumn or ErrProtectedColumn
}

// Error implements the error interface
func (e *ColumnError) Error() string {
	return fmt.Sprintf("cannot %s column %q: %v", e.Operation, e.Column, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ColumnError) Unwrap() error {
	return e.Err
}

// NewDuplicateColumnError creates a ColumnError wrapping ErrDuplicateColumn
func NewDuplicateColumnError(operation, column string) *ColumnError {
	return &ColumnError{Operation: operation, Column: column, Err: ErrDuplicateColumn}
}

// NewProtectedColumnError creates a ColumnError wrapping ErrProtectedColumn
func NewProtectedColumnError(operation, column string) *ColumnError {
	return &ColumnError{Operation: operation, Column: column, Err: ErrProtectedColumn}
}

// UnresolvedChangesError is returned by commit while changes remain pending.
type UnresolvedChangesError struct {
	Pending []string // IDs of the pending changes
}

// Error implements the error interface
func (e *UnresolvedChangesError) Error() string {
	if len(e.Pending) == 1 {
		return fmt.Sprintf("cannot commit: change %s is still pending", e.Pending[0])
	}
	return fmt.Sprintf("cannot commit: %d changes are still pending", len(e.Pending))
}

// Is implements errors.Is support
func (e *UnresolvedChangesError) Is(target error) bool {
	return target == ErrUnresolvedChanges
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ReadOnlyError is returned when a baseline snapshot is edited.
type ReadOnlyError struct {
	Resource string
}

// Error implements the error interface
func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("%s is read only", e.Resource)
}

// Is implements errors.Is support
func (e *ReadOnlyError) Is(target error) bool {
	return target == ErrReadOnly
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "json", "elf", ...
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "watch"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "save", "extract", "match", "commit"
	Resource  string // "project", "snapshot", "catalog", "changeset"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsMalformedBinary checks if an error is a malformed binary error
func IsMalformedBinary(err error) bool {
	return errors.Is(err, ErrMalformedBinary)
}

// IsDuplicateSymbol checks if an error is a duplicate symbol error
func IsDuplicateSymbol(err error) bool {
	return errors.Is(err, ErrDuplicateSymbol)
}

// IsDuplicateColumn checks if an error is a duplicate column error
func IsDuplicateColumn(err error) bool {
	return errors.Is(err, ErrDuplicateColumn)
}

// IsProtectedColumn checks if an error is a protected column error
func IsProtectedColumn(err error) bool {
	return errors.Is(err, ErrProtectedColumn)
}

// IsUnresolvedChanges checks if an error is an unresolved changes error
func IsUnresolvedChanges(err error) bool {
	return errors.Is(err, ErrUnresolvedChanges)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsReadOnly checks if an error is a read only error
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
