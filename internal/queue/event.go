// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a seat is successfully
// booked.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	ScreeningID   uint64 `json:"screening_id"`
	UserID        uint64 `json:"user_id"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
	ConfirmedAt   string `json:"confirmed_at"`
}
