// Package errs holds the error taxonomy shared by the repository, the
// completion engine and the import codec. Callers branch on category with the
// Is* helpers rather than matching message text.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports bad user input: an odometer rollback, a
// non-positive interval, a missing required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an operation that referenced an id not present in the
// repository.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// StorageError wraps a failure of the underlying key-value primitive.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// FormatError reports an import file that is missing the required header or
// contains a row that cannot be tokenized or validated. Row is 1-based and 0
// when the failure is not tied to a specific row.
type FormatError struct {
	Row     int
	Message string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("format: row %d: %s", e.Row, e.Message)
	}
	return "format: " + e.Message
}

func Format(row int, message string) *FormatError {
	return &FormatError{Row: row, Message: message}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}
