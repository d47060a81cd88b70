package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/utils"
)

const testSecret = "unit-test-secret"

func authedRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token exposes sub and role", func(t *testing.T) {
		access, err := utils.NewAccessToken(testSecret, 7, "ADMIN", 15)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		c, _ := authedRequest(t, access.Token)

		var gotUser, gotRole any
		err = JWTAuth(testSecret)(func(c echo.Context) error {
			gotUser = c.Get("user_id")
			gotRole = c.Get("role")
			return c.NoContent(http.StatusOK)
		})(c)
		if err != nil {
			t.Fatalf("middleware: %v", err)
		}
		// JWT numbers round-trip as float64.
		if gotUser != float64(7) {
			t.Errorf("user_id = %v (%T), want 7", gotUser, gotUser)
		}
		if gotRole != "ADMIN" {
			t.Errorf("role = %v, want ADMIN", gotRole)
		}
	})

	t.Run("missing header is 401", func(t *testing.T) {
		c, rec := authedRequest(t, "")
		err := JWTAuth(testSecret)(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})(c)
		if err != nil {
			t.Fatalf("middleware: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("token signed with another secret is 401", func(t *testing.T) {
		access, err := utils.NewAccessToken("other-secret", 7, "USER", 15)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		c, rec := authedRequest(t, access.Token)
		err = JWTAuth(testSecret)(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})(c)
		if err != nil {
			t.Fatalf("middleware: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("expired token is 401", func(t *testing.T) {
		access, err := utils.NewAccessToken(testSecret, 7, "USER", -5)
		if err != nil {
			t.Fatalf("NewAccessToken: %v", err)
		}
		c, rec := authedRequest(t, access.Token)
		err = JWTAuth(testSecret)(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})(c)
		if err != nil {
			t.Fatalf("middleware: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	invoke := func(role any, allowed ...string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		_ = RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		return rec.Code
	}

	if code := invoke("ADMIN", "ADMIN"); code != http.StatusOK {
		t.Errorf("admin on admin route: %d, want 200", code)
	}
	if code := invoke("USER", "ADMIN"); code != http.StatusForbidden {
		t.Errorf("user on admin route: %d, want 403", code)
	}
	if code := invoke(nil, "ADMIN"); code != http.StatusForbidden {
		t.Errorf("missing role: %d, want 403", code)
	}
	if code := invoke("USER", "USER", "ADMIN"); code != http.StatusOK {
		t.Errorf("user on shared route: %d, want 200", code)
	}
}
