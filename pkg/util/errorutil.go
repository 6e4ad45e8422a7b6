package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// taxonomy maps lifecycle sentinels to stable user-facing codes. Every
// rejected ticket action resolves to one of these, never a generic failure.
var taxonomy = []struct {
	sentinel error
	code     string
	status   int
}{
	{domain.ErrAuthorizationDenied, "AUTHORIZATION_DENIED", http.StatusForbidden},
	{domain.ErrTicketNotOpen, "TICKET_NOT_OPEN", http.StatusConflict},
	{domain.ErrAlreadyClosing, "ALREADY_CLOSING", http.StatusConflict},
	{domain.ErrAlreadyClosed, "ALREADY_CLOSED", http.StatusConflict},
	{domain.ErrSlotsFull, "SLOTS_FULL", http.StatusConflict},
	{domain.ErrAlreadyJoined, "ALREADY_JOINED", http.StatusConflict},
	{domain.ErrNotJoined, "NOT_JOINED", http.StatusConflict},
	{domain.ErrUnknownTicketType, "UNKNOWN_TICKET_TYPE", http.StatusBadRequest},
	{domain.ErrNoSuchTicket, "NO_SUCH_TICKET", http.StatusNotFound},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, entry := range taxonomy {
		if errors.Is(err, entry.sentinel) {
			return &DomainError{
				Code:       entry.code,
				Message:    entry.sentinel.Error(),
				HTTPStatus: entry.status,
				Err:        err,
			}
		}
	}
	var collab *domain.CollaboratorError
	if errors.As(err, &collab) {
		return &DomainError{
			Code:       "COLLABORATOR_FAILURE",
			Message:    fmt.Sprintf("external call failed: %s", collab.Op),
			HTTPStatus: http.StatusBadGateway,
			Err:        err,
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
