package model

// Cinema represents a movie theatre venue.  Its seat geometry
// (Rows × SeatsPerRow) is inherited by every screening scheduled in
// it and bounds the (row, seat) coordinates a reservation may use.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – venue name.
//  Rows        – number of seat rows, addressed 1..Rows.
//  SeatsPerRow – seats in each row, addressed 1..SeatsPerRow.
type Cinema struct {
	ID          uint64 // cinemas.id
	Name        string // cinemas.name
	Rows        uint32 // cinemas.seat_rows
	SeatsPerRow uint32 // cinemas.seats_per_row
}
