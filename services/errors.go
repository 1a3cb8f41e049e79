package services

import (
	"errors"
	"fmt"
	"strings"

	"checklist_app_go/models"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateSubmission = errors.New("a submission already exists for this employee id")
	ErrDeliveryFailed      = errors.New("email delivery failed")
	ErrUnsupportedItemType = errors.New("unsupported item type")
	ErrChecklistNotFound   = errors.New("checklist not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
)

// ValidationError lists the fields that failed validation. It matches ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string // field -> message key
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add records a failed field, keeping the first message per field
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field failed
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// EmailDeliveryError carries the destination address and the transport error.
// It matches ErrDeliveryFailed.
type EmailDeliveryError struct {
	To  string
	Err error
}

func (e *EmailDeliveryError) Error() string {
	return fmt.Sprintf("email delivery to %s failed: %v", e.To, e.Err)
}

func (e *EmailDeliveryError) Unwrap() error {
	return e.Err
}

func (e *EmailDeliveryError) Is(target error) bool {
	return target == ErrDeliveryFailed
}

// UnsupportedItemTypeError is a schema error: an item type the collector or renderer cannot handle
type UnsupportedItemTypeError struct {
	ItemID string
	Type   models.ItemType
}

func (e *UnsupportedItemTypeError) Error() string {
	return fmt.Sprintf("item %s: unsupported item type %q", e.ItemID, e.Type)
}

func (e *UnsupportedItemTypeError) Is(target error) bool {
	return target == ErrUnsupportedItemType
}
