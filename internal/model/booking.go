package model

import "time"

// Booking statuses.  A booking starts as PENDING and is either
// confirmed or cancelled.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking mirrors the 'bookings' table.  The table and this type exist
// for the planned date-ranged booking flow, but no route or repository
// uses them yet; room reservation is still the whole-room boolean on
// the rooms table.  StartAt must be earlier than EndsAt and TotalPrice
// must be non-negative.
type Booking struct {
	ID         uint64    // bookings.id
	UserID     uint64    // bookings.user_id
	RoomID     uint64    // bookings.room_id
	StartAt    time.Time // bookings.start_at
	EndsAt     time.Time // bookings.ends_at
	Status     string    // bookings.status (pending/confirmed/cancelled)
	TotalPrice uint32    // bookings.total_price_cents
	CreatedAt  time.Time // bookings.created_at
	UpdatedAt  time.Time // bookings.updated_at
}
