package types

import (
	"errors"
	"fmt"
)

// Entity model errors.
var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrNotFound       = errors.New("entity not found")
	ErrInvalidData    = errors.New("invalid entity data")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrNotScalar      = errors.New("attribute is not scalar")
	ErrProtectedField = errors.New("attribute cannot be updated")
)

// Storage errors.
var (
	ErrCorruptStore = errors.New("persisted store is corrupt")
	ErrStoreClosed  = errors.New("store is closed")
)

// NotFoundError reports a compound key missing from the registry.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FieldError wraps a failure tied to one attribute of a record.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CorruptStoreError reports a persisted document that cannot be loaded.
// Key is empty when the document as a whole is malformed.
type CorruptStoreError struct {
	Key string
	Err error
}

func (e *CorruptStoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("corrupt store: %v", e.Err)
	}
	return fmt.Sprintf("corrupt store: record %q: %v", e.Key, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

func (e *CorruptStoreError) Is(target error) bool {
	return target == ErrCorruptStore
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCorrupt checks if an error reports corrupt persisted state.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptStore)
}
