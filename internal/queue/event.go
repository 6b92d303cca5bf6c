// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// RoomReservedEvent is published after a reservation has been committed
// to the database.  Consumers must treat it as informational: the
// reservation exists whether or not the event is ever delivered.
type RoomReservedEvent struct {
	RoomID             uint64 `json:"room_id"`
	Title              string `json:"title"`
	City               string `json:"city"`
	OwnerID            uint64 `json:"owner_id"`
	ReservedByID       uint64 `json:"reserved_by_id"`
	ReservedByUsername string `json:"reserved_by_username"`
	ReservedAt         string `json:"reserved_at"` // RFC3339
}

// RoomReservedQueue is the durable queue both publisher and consumer
// declare.
const RoomReservedQueue = "room.reserved"
