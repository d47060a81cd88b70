package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/repository"
)

// MovieHandler exposes the public movie catalog.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	if movies == nil {
		panic("nil repository passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

type movieResp struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Duration    string `json:"duration"`
	Rating      string `json:"rating"`
	ReleaseDate string `json:"release_date"`
	PosterImg   string `json:"poster_img"`
	BackdropImg string `json:"backdrop_img"`
	Director    string `json:"director"`
	Cast        string `json:"cast"`
}

func toMovieResp(m model.Movie) movieResp {
	return movieResp{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Genre:       m.Genre,
		Duration:    m.Duration,
		Rating:      m.Rating,
		ReleaseDate: m.ReleaseDate,
		PosterImg:   m.PosterImg,
		BackdropImg: m.BackdropImg,
		Director:    m.Director,
		Cast:        m.Cast,
	}
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Movies.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/movies/:id, returning the movie and its
// scheduled screenings.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, screenings, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie":      toMovieResp(m),
		"screenings": screenings,
	})
}
