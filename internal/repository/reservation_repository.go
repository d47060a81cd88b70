package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/movietown/movietown-api/internal/model"
)

// ReservationRepo provides CRUD operations for seat reservations.
// A reservation claims exactly one (row, seat) of one screening.  The
// reservations table carries a unique key over (screening_id,
// seat_row, seat_num); Create relies on that key as the single
// source of truth for "seat taken" rather than on any read-then-write
// check, so concurrent bookings on independent connections resolve
// correctly with no in-process coordination.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning more than one repository.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// mysqlDupKey reports whether err is a MySQL duplicate-entry error
// (code 1062), which is how the unique seat key rejects the loser of
// a booking race. The string fallback covers drivers or proxies that
// flatten the error type.
func mysqlDupKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a reservation row for the given seat.  The insert is
// submitted optimistically; if the unique key on (screening_id,
// seat_row, seat_num) rejects it, ErrSeatTaken is returned.  On
// success the generated ID and creation time are populated on res.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (screening_id, user_id, seat_row, seat_num) VALUES (?,?,?,?)`
	result, err := r.db.ExecContext(ctx, q, res.ScreeningID, res.UserID, res.Row, res.Seat)
	if err != nil {
		if mysqlDupKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at FROM reservations WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt)
}

// OccupiedSeat is one taken (row, seat) pair of a screening, as
// rendered by the seat-map UI.
type OccupiedSeat struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

// OccupiedByScreening returns every taken (row, seat) pair for the
// screening, ordered by row then seat for deterministic output.  The
// result is a snapshot at query time; a later booking must still pass
// the unique key, so staleness here is harmless.
func (r *ReservationRepo) OccupiedByScreening(ctx context.Context, screeningID uint64) ([]OccupiedSeat, error) {
	const q = `SELECT seat_row, seat_num FROM reservations WHERE screening_id = ? ORDER BY seat_row, seat_num`
	rows, err := r.db.QueryContext(ctx, q, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occupied := make([]OccupiedSeat, 0)
	for rows.Next() {
		var s OccupiedSeat
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		occupied = append(occupied, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return occupied, nil
}

// ReservationDetail is a reservation joined with its screening, movie
// and cinema for display to the owning user.
type ReservationDetail struct {
	ID         uint64 `json:"id"`
	Row        uint32 `json:"row"`
	Seat       uint32 `json:"seat"`
	Screening  struct {
		ID        uint64 `json:"id"`
		StartsAt  string `json:"starts_at"`
		Movie     struct {
			Title     string `json:"title"`
			PosterImg string `json:"poster_img"`
		} `json:"movie"`
		Cinema struct {
			Name string `json:"name"`
		} `json:"cinema"`
	} `json:"screening"`
}

// ListByUser returns all reservations belonging to the user, newest
// first, each joined with the screening summary the reservation page
// displays.  When the user has no reservations an empty slice is
// returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.seat_row, r.seat_num,
	                  s.id, s.starts_at,
	                  m.title, m.poster_img,
	                  c.name
	           FROM reservations r
	           JOIN screenings s ON s.id = r.screening_id
	           JOIN movies m ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var startsAt time.Time
		if err := rows.Scan(
			&d.ID, &d.Row, &d.Seat,
			&d.Screening.ID, &startsAt,
			&d.Screening.Movie.Title, &d.Screening.Movie.PosterImg,
			&d.Screening.Cinema.Name,
		); err != nil {
			return nil, err
		}
		d.Screening.StartsAt = startsAt.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// DeleteByIDAndUser cancels a reservation on behalf of its owner.  It
// returns sql.ErrNoRows when the reservation does not exist and
// ErrForbidden when it belongs to a different user; the row is left
// untouched in both cases.  Existence is checked before ownership so
// the two failures stay distinct.
func (r *ReservationRepo) DeleteByIDAndUser(ctx context.Context, reservationID, userID uint64) error {
	const q = `SELECT user_id FROM reservations WHERE id = ?`
	var ownerID uint64
	if err := r.db.QueryRowContext(ctx, q, reservationID).Scan(&ownerID); err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	// The delete is still keyed on both id and user_id: if the row was
	// cancelled or re-owned between the check and the delete, affecting
	// zero rows is the correct outcome either way.
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ? AND user_id = ?`, reservationID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
