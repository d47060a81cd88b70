package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/repository"
)

// ScreeningHandler exposes the screening catalog and the admin-only
// create/delete operations.
type ScreeningHandler struct {
	Screenings *repository.ScreeningRepo
}

func NewScreeningHandler(screenings *repository.ScreeningRepo) *ScreeningHandler {
	if screenings == nil {
		panic("nil repository passed to NewScreeningHandler")
	}
	return &ScreeningHandler{Screenings: screenings}
}

// List handles GET /v1/screenings.
func (h *ScreeningHandler) List(c echo.Context) error {
	details, err := h.Screenings.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, details)
}

// Get handles GET /v1/screenings/:id.
func (h *ScreeningHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	detail, err := h.Screenings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, detail)
}

type createScreeningReq struct {
	CinemaID uint64 `json:"cinema_id"`
	MovieID  uint64 `json:"movie_id"`
	StartsAt string `json:"starts_at"` // RFC3339
}

// Create handles POST /v1/screenings (admin only).  The referenced
// cinema and movie must exist; dangling references are reported per
// field.
func (h *ScreeningHandler) Create(c echo.Context) error {
	var req createScreeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.CinemaID == 0 || req.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cinema_id and movie_id are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	sc := model.Screening{
		CinemaID: req.CinemaID,
		MovieID:  req.MovieID,
		StartsAt: startsAt.UTC(),
	}
	if err := h.Screenings.Create(c.Request().Context(), &sc); err != nil {
		switch {
		case errors.Is(err, repository.ErrCinemaNotFound):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid cinema_id"})
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid movie_id"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":        sc.ID,
		"cinema_id": sc.CinemaID,
		"movie_id":  sc.MovieID,
		"starts_at": sc.StartsAt.Format(time.RFC3339),
	})
}

// Delete handles DELETE /v1/screenings/:id (admin only).  The
// screening and every reservation referencing it vanish in one
// transaction; on any failure both remain exactly as before.
func (h *ScreeningHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Screenings.DeleteCascade(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
