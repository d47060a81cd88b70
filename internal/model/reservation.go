package model

import "time"

// Reservation is one occupied seat for one screening by one user.
// The pair (Row, Seat) is unique per screening; the database
// enforces this with a composite unique key, which is the final
// arbiter when two bookings race for the same seat.
//
// Fields:
//  ID          – primary key identifier.
//  ScreeningID – screening the seat belongs to.
//  UserID      – user who booked the seat.
//  Row         – 1-based row number, bounded by the cinema's rows.
//  Seat        – 1-based seat number, bounded by seats per row.
//  CreatedAt   – creation timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	ScreeningID uint64    // reservations.screening_id
	UserID      uint64    // reservations.user_id
	Row         uint32    // reservations.seat_row
	Seat        uint32    // reservations.seat_num
	CreatedAt   time.Time // reservations.created_at
}
