// Package handler: booking endpoints. Book submits the reservation
// insert optimistically and lets the database's unique seat key decide
// races; a losing request is answered with a distinct 409 so the
// client can refresh the seat map and pick again.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/queue"
	"github.com/movietown/movietown-api/internal/repository"
	"github.com/movietown/movietown-api/internal/service"
)

// ReservationHandler groups the repositories needed to book and
// cancel seats and to list a user's reservations.  JWT authentication
// has already been performed by middleware.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Screenings   *repository.ScreeningRepo
}

// NewReservationHandler constructs a ReservationHandler.  All
// dependencies must be non-nil.
func NewReservationHandler(reservations *repository.ReservationRepo, screenings *repository.ScreeningRepo) *ReservationHandler {
	if reservations == nil || screenings == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Screenings: screenings}
}

type bookReq struct {
	ScreeningID uint64 `json:"screening_id"`
	Row         uint32 `json:"row"`
	Seat        uint32 `json:"seat"`
}

// Book handles POST /v1/reservations.  The request claims one
// (row, seat) of one screening for the authenticated user.
//
// Outcomes are kept distinct: 404 when the screening does not exist,
// 422 when the seat falls outside the cinema geometry, 409 with code
// SEAT_TAKEN when another booking won the race, 201 on success.  The
// bounds check is defense-in-depth only; the unique key remains the
// authoritative guard and is consulted even when the pre-checks pass.
func (h *ReservationHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ScreeningID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "screening_id is required"})
	}
	if req.Row == 0 || req.Seat == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "row and seat must be positive"})
	}

	ctx := c.Request().Context()
	rows, seatsPerRow, err := h.Screenings.Geometry(ctx, req.ScreeningID)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if req.Row > rows || req.Seat > seatsPerRow {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":         "seat out of range",
			"rows":          rows,
			"seats_per_row": seatsPerRow,
		})
	}

	res := model.Reservation{
		ScreeningID: req.ScreeningID,
		UserID:      userID,
		Row:         req.Row,
		Seat:        req.Seat,
	}
	if err := h.Reservations.Create(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrSeatTaken) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "seat already taken",
				"code":  "SEAT_TAKEN",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Best effort: the booking is durable regardless of broker state.
	go func(ev queue.ReservationConfirmedEvent) {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := service.PublishReservationConfirmed(pubCtx, ev); err != nil {
			log.Printf("reservation: publish confirmed event failed: %v", err)
		}
	}(queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		ScreeningID:   res.ScreeningID,
		UserID:        res.UserID,
		Row:           res.Row,
		Seat:          res.Seat,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"id":      res.ID,
		"message": "reservation confirmed",
	})
}

// Cancel handles DELETE /v1/reservations/:id.  Only the owning user
// may cancel; admins get no implicit bypass.  Missing reservation and
// foreign reservation stay distinct outcomes (404 vs 403) and the row
// is untouched on failure.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	err = h.Reservations.DeleteByIDAndUser(c.Request().Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// OccupiedSeats handles GET /v1/screenings/:id/seats.  It returns the
// taken (row, seat) pairs the booking UI greys out.  The snapshot may
// be stale by the time the user books; Book re-verifies at insert
// time, so that staleness is expected and harmless.
func (h *ReservationHandler) OccupiedSeats(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, _, err := h.Screenings.Geometry(ctx, id); err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	occupied, err := h.Reservations.OccupiedByScreening(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, occupied)
}

// ListMine handles GET /v1/reservations/me.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, details)
}
