package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/repository"
)

func newMockRepos(t *testing.T) (*repository.ReservationRepo, *repository.ScreeningRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repository.NewReservationRepo(db), repository.NewScreeningRepo(db), mock
}

// jsonCtx builds an echo context carrying an authenticated user and a
// JSON body, the shape every booking request arrives in.
func jsonCtx(method, target, body string, userID float64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// JWT numeric claims arrive as float64.
	c.Set("user_id", userID)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m
}

func expectGeometry(mock sqlmock.Sqlmock, id uint64, rows, seats uint32) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.seat_rows, c.seats_per_row")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"seat_rows", "seats_per_row"}).AddRow(rows, seats))
}

func TestReservationBook(t *testing.T) {
	t.Run("unknown screening is 404", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT c.seat_rows, c.seats_per_row")).
			WithArgs(uint64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"seat_rows", "seats_per_row"}))

		c, rec := jsonCtx(http.MethodPost, "/v1/reservations",
			`{"screening_id":404,"row":1,"seat":1}`, 7)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("seat outside geometry is 422 with the bounds", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		expectGeometry(mock, 3, 8, 10)

		c, rec := jsonCtx(http.MethodPost, "/v1/reservations",
			`{"screening_id":3,"row":9,"seat":1}`, 7)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["rows"] != float64(8) || body["seats_per_row"] != float64(10) {
			t.Errorf("body = %v, want rows=8 seats_per_row=10", body)
		}
	})

	t.Run("losing the seat race is 409 SEAT_TAKEN", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		expectGeometry(mock, 3, 8, 10)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		c, rec := jsonCtx(http.MethodPost, "/v1/reservations",
			`{"screening_id":3,"row":2,"seat":5}`, 7)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if code := decodeBody(t, rec)["code"]; code != "SEAT_TAKEN" {
			t.Errorf("code = %v, want SEAT_TAKEN", code)
		}
	})

	t.Run("valid booking is 201 with the new id", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		expectGeometry(mock, 3, 8, 10)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
			WillReturnResult(sqlmock.NewResult(41, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM reservations WHERE id = ?")).
			WithArgs(uint64(41)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
				AddRow(time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)))

		c, rec := jsonCtx(http.MethodPost, "/v1/reservations",
			`{"screening_id":3,"row":2,"seat":5}`, 7)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if id := decodeBody(t, rec)["id"]; id != float64(41) {
			t.Errorf("id = %v, want 41", id)
		}
	})

	t.Run("zero row or seat is rejected before touching the database", func(t *testing.T) {
		reservations, screenings, _ := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)

		c, rec := jsonCtx(http.MethodPost, "/v1/reservations",
			`{"screening_id":3,"row":0,"seat":5}`, 7)
		if err := h.Book(c); err != nil {
			t.Fatalf("Book: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestReservationCancel(t *testing.T) {
	run := func(t *testing.T, prepare func(sqlmock.Sqlmock), wantStatus int) {
		t.Helper()
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		prepare(mock)

		c, rec := jsonCtx(http.MethodDelete, "/v1/reservations/10", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("10")
		if err := h.Cancel(c); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if rec.Code != wantStatus {
			t.Errorf("status = %d, want %d", rec.Code, wantStatus)
		}
	}

	t.Run("missing reservation is 404", func(t *testing.T) {
		run(t, func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM reservations WHERE id = ?")).
				WillReturnError(sql.ErrNoRows)
		}, http.StatusNotFound)
	})

	t.Run("someone else's reservation is 403", func(t *testing.T) {
		run(t, func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM reservations WHERE id = ?")).
				WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(99))
		}, http.StatusForbidden)
	})

	t.Run("own reservation is 204", func(t *testing.T) {
		run(t, func(mock sqlmock.Sqlmock) {
			mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM reservations WHERE id = ?")).
				WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ? AND user_id = ?")).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}, http.StatusNoContent)
	})
}

func TestListMine(t *testing.T) {
	cols := []string{
		"id", "seat_row", "seat_num",
		"s_id", "starts_at",
		"title", "poster_img",
		"name",
	}

	t.Run("returns the user's reservations with screening summaries", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)

		starts := time.Date(2026, 6, 1, 20, 30, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.seat_row, r.seat_num")).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(41, 2, 5, 3, starts, "Heat", "/heat.jpg", "Cinema Warszawa"))

		c, rec := jsonCtx(http.MethodGet, "/v1/reservations/me", "", 7)
		if err := h.ListMine(c); err != nil {
			t.Fatalf("ListMine: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var out []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
		if len(out) != 1 {
			t.Fatalf("got %d reservations, want 1", len(out))
		}
		if out[0]["id"] != float64(41) {
			t.Errorf("id = %v, want 41", out[0]["id"])
		}
		screening, ok := out[0]["screening"].(map[string]any)
		if !ok {
			t.Fatalf("screening missing from %v", out[0])
		}
		if screening["starts_at"] != "2026-06-01T20:30:00Z" {
			t.Errorf("starts_at = %v", screening["starts_at"])
		}
	})

	t.Run("no reservations is an empty array, not null", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.seat_row, r.seat_num")).
			WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows(cols))

		c, rec := jsonCtx(http.MethodGet, "/v1/reservations/me", "", 7)
		if err := h.ListMine(c); err != nil {
			t.Fatalf("ListMine: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})
}

func TestOccupiedSeats(t *testing.T) {
	t.Run("unknown screening is 404", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT c.seat_rows, c.seats_per_row")).
			WillReturnRows(sqlmock.NewRows([]string{"seat_rows", "seats_per_row"}))

		c, rec := jsonCtx(http.MethodGet, "/v1/screenings/404/seats", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("404")
		if err := h.OccupiedSeats(c); err != nil {
			t.Fatalf("OccupiedSeats: %v", err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("empty screening returns an empty array, not null", func(t *testing.T) {
		reservations, screenings, mock := newMockRepos(t)
		h := NewReservationHandler(reservations, screenings)
		expectGeometry(mock, 3, 8, 10)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT seat_row, seat_num FROM reservations")).
			WillReturnRows(sqlmock.NewRows([]string{"seat_row", "seat_num"}))

		c, rec := jsonCtx(http.MethodGet, "/v1/screenings/3/seats", "", 7)
		c.SetParamNames("id")
		c.SetParamValues("3")
		if err := h.OccupiedSeats(c); err != nil {
			t.Fatalf("OccupiedSeats: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})
}
