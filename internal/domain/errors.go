package domain

import "errors"

var (
	ErrAuthorizationDenied = errors.New("authorization denied")

	ErrTicketNotOpen  = errors.New("ticket not open")
	ErrAlreadyClosing = errors.New("ticket already closing")
	ErrAlreadyClosed  = errors.New("ticket already closed")

	ErrSlotsFull = errors.New("helper slots full")

	ErrAlreadyJoined = errors.New("helper already joined")
	ErrNotJoined     = errors.New("helper not joined")

	ErrUnknownTicketType = errors.New("unknown ticket type")

	ErrNoSuchTicket = errors.New("no such ticket")
)

// CollaboratorError marks a transient failure of an external collaborator
// (channel creation, permission grant, history fetch, ledger write). It wraps
// the underlying cause with enough context to retry the specific side effect.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return "collaborator failure: " + e.Op + ": " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err as a CollaboratorError for operation op.
func NewCollaboratorError(op string, err error) error {
	return &CollaboratorError{Op: op, Err: err}
}

// IsCollaboratorError reports whether err is (or wraps) a CollaboratorError.
func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
