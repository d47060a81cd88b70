// Package handler: user profile and admin user-management endpoints.
// Every read returns the row's version stamp and every update demands
// it back, so two concurrent writers can never silently overwrite
// each other; the loser gets a distinct 409 and must re-read.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/repository"
)

// UserHandler bundles dependencies for profile endpoints.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

type userResp struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Version  uint64 `json:"version"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		Version:  u.Version,
	}
}

type updateMeReq struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Version  uint64  `json:"version"`
}

type adminUpdateUserReq struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Version  uint64  `json:"version"`
}

// Me handles GET /v1/users/me.  The returned version is the token the
// client must echo back when updating the profile.
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateMe handles PUT /v1/users/me.  The update is conditional on
// the version the caller last observed; a stale version yields 409
// VERSION_CONFLICT and mutates nothing.  On success the new version
// is returned so the client can keep editing without a reload.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateMeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Version == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version is required"})
	}
	patch := repository.UserPatch{FullName: req.FullName, Phone: req.Phone}
	newVersion, err := h.Users.UpdateWithVersion(c.Request().Context(), userID, patch, req.Version)
	if err != nil {
		return userUpdateError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated",
		"version": newVersion,
	})
}

// ListAll handles GET /v1/users (admin only).
func (h *UserHandler) ListAll(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// AdminUpdate handles PUT /v1/users/:id (admin only).  Same
// version-conditional contract as UpdateMe, with the role field
// additionally writable.
func (h *UserHandler) AdminUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminUpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Version == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "version is required"})
	}
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if role != model.RoleUser && role != model.RoleAdmin {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER or ADMIN"})
		}
		req.Role = &role
	}
	patch := repository.UserPatch{FullName: req.FullName, Phone: req.Phone, Role: req.Role}
	newVersion, err := h.Users.UpdateWithVersion(c.Request().Context(), id, patch, req.Version)
	if err != nil {
		return userUpdateError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user updated",
		"version": newVersion,
	})
}

// userUpdateError maps repository failures of the conditional update
// to their distinct HTTP outcomes.
func userUpdateError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "version conflict",
			"code":  "VERSION_CONFLICT",
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}
