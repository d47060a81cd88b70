package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/repository"
)

// CinemaHandler exposes the cinema catalog, mainly so clients can
// render seat geometry ahead of picking a screening.
type CinemaHandler struct {
	Cinemas *repository.CinemaRepo
}

func NewCinemaHandler(cinemas *repository.CinemaRepo) *CinemaHandler {
	if cinemas == nil {
		panic("nil repository passed to NewCinemaHandler")
	}
	return &CinemaHandler{Cinemas: cinemas}
}

type cinemaResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

func toCinemaResp(c model.Cinema) cinemaResp {
	return cinemaResp{ID: c.ID, Name: c.Name, Rows: c.Rows, SeatsPerRow: c.SeatsPerRow}
}

// List handles GET /v1/cinemas.
func (h *CinemaHandler) List(c echo.Context) error {
	cinemas, err := h.Cinemas.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]cinemaResp, 0, len(cinemas))
	for _, cin := range cinemas {
		out = append(out, toCinemaResp(cin))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/cinemas/:id.
func (h *CinemaHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cinema, err := h.Cinemas.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCinemaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toCinemaResp(cinema))
}
