package model

import "time"

// Screening identifies one showing of a movie in one cinema at one
// start time.  Seat geometry is not stored here; it is inherited
// from the cinema.  Deleting a screening removes every reservation
// that references it.
//
// Fields:
//  ID        – primary key identifier.
//  CinemaID  – venue the screening runs in.
//  MovieID   – movie being shown.
//  StartsAt  – start instant, stored in UTC.
//  CreatedAt – timestamp of creation.
type Screening struct {
	ID        uint64    // screenings.id
	CinemaID  uint64    // screenings.cinema_id
	MovieID   uint64    // screenings.movie_id
	StartsAt  time.Time // screenings.starts_at
	CreatedAt time.Time // screenings.created_at
}
