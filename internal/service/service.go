// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the store: conference publishing and dynamic
// queries, the transactional registration state machine, session and
// wishlist management, and derived-state recomputation.
package service

import "errors"

// Sentinel errors surfaced to handlers, which map each to a distinct
// HTTP status.
var (
	// ErrForbidden is returned when an authenticated user is not the
	// owning organizer.
	ErrForbidden = errors.New("only the owner can update the conference")

	// ErrAlreadyRegistered is returned when the profile already lists
	// the conference.
	ErrAlreadyRegistered = errors.New("already registered for this conference")

	// ErrNoSeatsAvailable is returned when a conference has no seats
	// left.
	ErrNoSeatsAvailable = errors.New("there are no seats available")

	// ErrValidation wraps malformed or incomplete request input.
	ErrValidation = errors.New("invalid request")
)

// Dispatcher enqueues fire-and-forget work for an external collaborator.
type Dispatcher interface {
	Enqueue(params map[string]string)
}
