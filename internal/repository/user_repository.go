package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/movietown/movietown-api/internal/model"
	"github.com/movietown/movietown-api/internal/utils"
)

// UserRepo provides persistence for user accounts.  Profile updates
// are guarded by an explicit version column: every write is
// conditional on the version the caller last observed and advances
// the stamp by one, so two concurrent writers can never silently
// clobber each other.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with the USER role and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, phone string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?,?,?,?,?)",
		email, hash, fullName, phone, model.RoleUser)
	if err != nil {
		if mysqlDupKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,phone,role,version,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.  The returned Version is the token
// the caller must echo back on a subsequent update.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,phone,role,version,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListAll returns every user, for the admin panel.  Password hashes
// are included in the struct but handlers must not serialize them.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,full_name,phone,role,version,created_at,updated_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UserPatch carries the fields an update may change.  Nil pointers
// leave the column as it is; the COALESCE in the statement keeps the
// whole patch a single atomic write.
type UserPatch struct {
	FullName *string
	Phone    *string
	Role     *string // admin updates only; nil elsewhere
}

// UpdateWithVersion applies patch to the user row only if its current
// version still equals expectedVersion, advancing the version in the
// same statement.  On success the new version (expectedVersion+1) is
// returned.  When the conditional update affects no rows the method
// distinguishes the two possible reasons with a follow-up read:
// sql.ErrNoRows when the user does not exist, ErrVersionConflict when
// another writer got there first.  Nothing is ever partially applied.
func (r *UserRepo) UpdateWithVersion(ctx context.Context, id uint64, patch UserPatch, expectedVersion uint64) (uint64, error) {
	const q = `UPDATE users
	           SET full_name = COALESCE(?, full_name),
	               phone     = COALESCE(?, phone),
	               role      = COALESCE(?, role),
	               version   = version + 1
	           WHERE id = ? AND version = ?`
	res, err := r.DB.ExecContext(ctx, q, patch.FullName, patch.Phone, patch.Role, id, expectedVersion)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", id).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, sql.ErrNoRows
		}
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}
