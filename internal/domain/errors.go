package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrMenuItemNotFound  = fmt.Errorf("menu item %w", ErrNotFound)
	ErrTableNotFound     = fmt.Errorf("table %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrDuplicateName     = errors.New("menu item with this name already exists")
	ErrDuplicateTable    = errors.New("table number already exists")
	ErrInUse             = errors.New("menu item is used in orders")
	ErrTableOccupied     = errors.New("table is occupied")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusChanged     = errors.New("order status changed concurrently")
	ErrValidation        = errors.New("validation failed")
	ErrStore             = errors.New("store error")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects every failed field of one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ErrValidation.Error()
	}
	msg := e[0].Error()
	if len(e) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(e)-1)
	}
	return msg
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure of the underlying store. The transaction it
// happened in has already been rolled back when the caller sees it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}
