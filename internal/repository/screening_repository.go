package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/movietown/movietown-api/internal/model"
)

// ScreeningRepo provides CRUD operations for screenings.  Deletion is
// the one non-trivial path: a screening owns its reservations, so
// removing it must retract every dependent reservation in the same
// transaction.  The schema also declares ON DELETE CASCADE on the
// foreign key, but the explicit transaction keeps the guarantee
// independent of the target store's cascade support.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo returns a new ScreeningRepo bound to the given database.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{db: db} }

// DB exposes the underlying handle.
func (r *ScreeningRepo) DB() *sql.DB { return r.db }

// ScreeningDetail is a screening joined with its movie summary and
// the cinema geometry the booking UI needs to draw the seat map.
type ScreeningDetail struct {
	ID       uint64 `json:"id"`
	StartsAt string `json:"starts_at"`
	Movie    struct {
		ID        uint64 `json:"id"`
		Title     string `json:"title"`
		PosterImg string `json:"poster_img"`
		Genre     string `json:"genre"`
		Duration  string `json:"duration"`
		Rating    string `json:"rating"`
	} `json:"movie"`
	Cinema struct {
		ID          uint64 `json:"id"`
		Name        string `json:"name"`
		Rows        uint32 `json:"rows"`
		SeatsPerRow uint32 `json:"seats_per_row"`
	} `json:"cinema"`
}

const screeningDetailQuery = `SELECT s.id, s.starts_at,
       m.id, m.title, m.poster_img, m.genre, m.duration, m.rating,
       c.id, c.name, c.seat_rows, c.seats_per_row
FROM screenings s
JOIN movies m ON m.id = s.movie_id
JOIN cinemas c ON c.id = s.cinema_id`

func scanScreeningDetail(row interface{ Scan(...any) error }) (ScreeningDetail, error) {
	var d ScreeningDetail
	var startsAt time.Time
	err := row.Scan(
		&d.ID, &startsAt,
		&d.Movie.ID, &d.Movie.Title, &d.Movie.PosterImg, &d.Movie.Genre, &d.Movie.Duration, &d.Movie.Rating,
		&d.Cinema.ID, &d.Cinema.Name, &d.Cinema.Rows, &d.Cinema.SeatsPerRow,
	)
	if err != nil {
		return d, err
	}
	d.StartsAt = startsAt.UTC().Format(time.RFC3339)
	return d, nil
}

// ListAll returns every screening with movie and cinema details,
// ordered by start time.
func (r *ScreeningRepo) ListAll(ctx context.Context) ([]ScreeningDetail, error) {
	rows, err := r.db.QueryContext(ctx, screeningDetailQuery+` ORDER BY s.starts_at, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ScreeningDetail, 0)
	for rows.Next() {
		d, err := scanScreeningDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetByID returns one screening with its movie and cinema details.
// ErrScreeningNotFound is returned when the id does not exist.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (ScreeningDetail, error) {
	d, err := scanScreeningDetail(r.db.QueryRowContext(ctx, screeningDetailQuery+` WHERE s.id = ?`, id))
	if err == sql.ErrNoRows {
		return d, ErrScreeningNotFound
	}
	return d, err
}

// Geometry returns the cinema seat bounds for a screening, used to
// range-check a booking before the insert is attempted.
func (r *ScreeningRepo) Geometry(ctx context.Context, id uint64) (rows, seatsPerRow uint32, err error) {
	const q = `SELECT c.seat_rows, c.seats_per_row
	           FROM screenings s JOIN cinemas c ON c.id = s.cinema_id
	           WHERE s.id = ?`
	err = r.db.QueryRowContext(ctx, q, id).Scan(&rows, &seatsPerRow)
	if err == sql.ErrNoRows {
		return 0, 0, ErrScreeningNotFound
	}
	return rows, seatsPerRow, err
}

// Create inserts a screening after verifying that the referenced
// cinema and movie exist.  ErrCinemaNotFound / ErrMovieNotFound are
// returned for dangling references so handlers can report which
// field is wrong.
func (r *ScreeningRepo) Create(ctx context.Context, sc *model.Screening) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM cinemas WHERE id=?)", sc.CinemaID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrCinemaNotFound
	}
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM movies WHERE id=?)", sc.MovieID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrMovieNotFound
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO screenings (cinema_id, movie_id, starts_at) VALUES (?,?,?)",
		sc.CinemaID, sc.MovieID, sc.StartsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sc.ID = uint64(id)
	return nil
}

// DeleteCascade removes a screening and every reservation referencing
// it as one atomic unit: delete dependents, delete parent, commit or
// roll back together.  ErrScreeningNotFound is returned when the id
// does not exist; in that case nothing is touched.
func (r *ScreeningRepo) DeleteCascade(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE screening_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM screenings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScreeningNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
