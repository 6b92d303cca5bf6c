// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to HTTP statuses: ErrForbidden covers ownership violations and
// self-reservation, ErrAlreadyReserved covers the reserve-once rule,
// ErrAlreadyReacted covers a repeated identical reaction.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to touch: updating or deleting a room
// they do not own, or reserving their own room.  Handlers translate
// this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyReserved is returned when a reserve attempt loses to an
// earlier reservation.  Once set, the reserved flag is never cleared,
// so this error is permanent for a given room.  Handlers translate it
// into an HTTP 409 response.
var ErrAlreadyReserved = errors.New("room already reserved")

// ErrAlreadyReacted is returned when a user repeats the reaction they
// already hold on a room.  Switching to the opposite reaction is not an
// error.  Handlers translate this into an HTTP 400 response.
var ErrAlreadyReacted = errors.New("reaction already recorded")
