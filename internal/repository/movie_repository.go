package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/movietown/movietown-api/internal/model"
)

// MovieRepo provides read access to the movie catalog.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

// `cast` is a reserved word in MySQL and must stay backtick-quoted.
const movieColumns = "id,title,description,genre,duration,rating,release_date,poster_img,backdrop_img,director,`cast`"

func scanMovie(row interface{ Scan(...any) error }) (model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.Duration, &m.Rating,
		&m.ReleaseDate, &m.PosterImg, &m.BackdropImg, &m.Director, &m.Cast)
	return m, err
}

// ListAll returns the full catalog, newest entries first.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// MovieScreening is a screening summary embedded in a movie detail
// response.
type MovieScreening struct {
	ID         uint64 `json:"id"`
	CinemaID   uint64 `json:"cinema_id"`
	CinemaName string `json:"cinema_name"`
	StartsAt   string `json:"starts_at"`
}

// GetByID returns one movie and its scheduled screenings.
// ErrMovieNotFound is returned when the id does not exist.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, []MovieScreening, error) {
	m, err := scanMovie(r.DB.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id=?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return m, nil, ErrMovieNotFound
		}
		return m, nil, err
	}
	const q = `SELECT s.id, c.id, c.name, s.starts_at
	           FROM screenings s JOIN cinemas c ON c.id = s.cinema_id
	           WHERE s.movie_id = ? ORDER BY s.starts_at`
	rows, err := r.DB.QueryContext(ctx, q, id)
	if err != nil {
		return m, nil, err
	}
	defer rows.Close()
	screenings := make([]MovieScreening, 0)
	for rows.Next() {
		var ms MovieScreening
		var startsAt time.Time
		if err := rows.Scan(&ms.ID, &ms.CinemaID, &ms.CinemaName, &startsAt); err != nil {
			return m, nil, err
		}
		ms.StartsAt = startsAt.UTC().Format(time.RFC3339)
		screenings = append(screenings, ms)
	}
	if err := rows.Err(); err != nil {
		return m, nil, err
	}
	return m, screenings, nil
}
