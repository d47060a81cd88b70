// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to distinct HTTP responses. ErrSeatTaken and ErrVersionConflict
// are the two outcomes the booking and profile-update flows branch on;
// neither is ever folded into a generic server error.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrSeatTaken is returned when inserting a reservation violates the
// unique key on (screening_id, seat_row, seat_num), i.e. another
// request won the race for the same seat. Handlers should translate
// this into an HTTP 409 response, never a 500.
var ErrSeatTaken = errors.New("seat already taken")

// ErrVersionConflict is returned when a conditional user update finds
// that the row's version no longer matches the version the caller
// last observed. Nothing is written; the caller must re-read and
// retry. Handlers should translate this into an HTTP 409 response.
var ErrVersionConflict = errors.New("version conflict")

// ErrEmailExists is returned when registering with an email that is
// already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrScreeningNotFound is returned when a screening id does not
// resolve to a row.
var ErrScreeningNotFound = errors.New("screening not found")

// ErrMovieNotFound is returned when a movie id does not resolve to a row.
var ErrMovieNotFound = errors.New("movie not found")

// ErrCinemaNotFound is returned when a cinema id does not resolve to a row.
var ErrCinemaNotFound = errors.New("cinema not found")
