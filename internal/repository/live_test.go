package repository

// Live-database tests.  They exercise the guarantees that sqlmock
// cannot: the unique seat key arbitrating real concurrent inserts and
// the version column arbitrating concurrent profile updates.  Set
// MYSQL_TEST_DSN (e.g. "root:root@tcp(localhost:3306)/movietown_test?parseTime=true")
// to run them; otherwise they skip.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/migrations"
)

func liveDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("database unreachable: %v", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// seedScreening inserts a cinema, movie, screening and user and
// returns the screening and user ids.  Names are suffixed with the
// test time so repeated runs never collide.
func seedScreening(t *testing.T, db *sql.DB, rows, seatsPerRow uint32) (screeningID, userID uint64) {
	t.Helper()
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	res, err := db.ExecContext(ctx,
		"INSERT INTO cinemas (name, seat_rows, seats_per_row) VALUES (?,?,?)",
		"Test Cinema "+suffix, rows, seatsPerRow)
	if err != nil {
		t.Fatalf("seed cinema: %v", err)
	}
	cinemaID, _ := res.LastInsertId()

	res, err = db.ExecContext(ctx,
		"INSERT INTO movies (title, description, genre, poster_img, `cast`) VALUES (?,?,?,?,?)",
		"Test Movie "+suffix, "d", "Drama", "", "")
	if err != nil {
		t.Fatalf("seed movie: %v", err)
	}
	movieID, _ := res.LastInsertId()

	res, err = db.ExecContext(ctx,
		"INSERT INTO screenings (cinema_id, movie_id, starts_at) VALUES (?,?,?)",
		cinemaID, movieID, time.Now().UTC().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("seed screening: %v", err)
	}
	sid, _ := res.LastInsertId()

	uid, err := NewUserRepo(db).Create(ctx,
		fmt.Sprintf("race+%s@test.local", suffix), "secret", "Race Tester", "", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return uint64(sid), uid
}

func TestSeatBookingRaceLive(t *testing.T) {
	db := liveDB(t)
	screeningID, userID := seedScreening(t, db, 8, 10)
	repo := NewReservationRepo(db)

	const contenders = 16
	var wg sync.WaitGroup
	results := make(chan error, contenders)
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res := model.Reservation{ScreeningID: screeningID, UserID: userID, Row: 1, Seat: 1}
			results <- repo.Create(context.Background(), &res)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var won, taken, other int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSeatTaken):
			taken++
		default:
			other++
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if taken != contenders-1 {
		t.Errorf("ErrSeatTaken = %d, want %d", taken, contenders-1)
	}

	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM reservations WHERE screening_id=? AND seat_row=1 AND seat_num=1",
		screeningID).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("stored reservations = %d, want 1", count)
	}
}

func TestUserVersionRaceLive(t *testing.T) {
	db := liveDB(t)
	_, userID := seedScreening(t, db, 4, 4)
	repo := NewUserRepo(db)

	u, err := repo.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	const contenders = 8
	var wg sync.WaitGroup
	results := make(chan error, contenders)
	start := make(chan struct{})

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			name := fmt.Sprintf("Writer %d", i)
			_, err := repo.UpdateWithVersion(context.Background(), userID, UserPatch{FullName: &name}, u.Version)
			results <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(results)

	var won, conflicts int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrVersionConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if conflicts != contenders-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, contenders-1)
	}

	after, err := repo.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetByID after race: %v", err)
	}
	if after.Version != u.Version+1 {
		t.Errorf("version = %d, want %d", after.Version, u.Version+1)
	}
}
