// Package repository implements the persistence layer over MySQL.
// Sentinel errors defined here let handlers distinguish failure
// scenarios without string matching: ErrForbidden maps to HTTP 403,
// the not-found values to 404 and ErrEmailExists to 409.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on
// a resource they do not own (a reservation of another customer, a
// store of another owner).
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrStoreNotFound is returned when a store id does not resolve.
var ErrStoreNotFound = errors.New("store not found")

// ErrReservationNotFound is returned when a reservation id does not
// resolve.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrReviewExists is returned when a reservation already carries a
// review; the reviews table enforces this with a unique key on
// reservation_id.
var ErrReviewExists = errors.New("review already exists")
