package repository

import (
	"context"
	"database/sql"

	"github.com/movietown/movietown-api/internal/model"
)

// CinemaRepo provides read access to the cinema catalog.  Cinemas are
// seeded by migration and never mutated at runtime; they exist to
// supply seat geometry for screenings.
type CinemaRepo struct{ DB *sql.DB }

func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{DB: db} }

// ListAll returns every cinema.
func (r *CinemaRepo) ListAll(ctx context.Context) ([]model.Cinema, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name,seat_rows,seats_per_row FROM cinemas ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cinemas := make([]model.Cinema, 0)
	for rows.Next() {
		var c model.Cinema
		if err := rows.Scan(&c.ID, &c.Name, &c.Rows, &c.SeatsPerRow); err != nil {
			return nil, err
		}
		cinemas = append(cinemas, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cinemas, nil
}

// GetByID fetches a cinema by id.  ErrCinemaNotFound is returned when
// the id does not exist.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (model.Cinema, error) {
	var c model.Cinema
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,seat_rows,seats_per_row FROM cinemas WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.Rows, &c.SeatsPerRow)
	if err == sql.ErrNoRows {
		return c, ErrCinemaNotFound
	}
	return c, err
}
