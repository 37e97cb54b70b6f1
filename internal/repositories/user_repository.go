package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vregistry/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, username, COALESCE(full_name,''), iin, passport_number, email, role_id, password_hash,
	refresh_token, refresh_expires_at, refresh_revoked, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var (
		email  sql.NullString
		roleID sql.NullInt64
		ph     sql.NullString
		rt     sql.NullString
		rte    sql.NullTime
		rr     sql.NullBool
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.FullName, &u.IIN, &u.PassportNumber, &email, &roleID, &ph,
		&rt, &rte, &rr, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if email.Valid {
		u.Email = email.String
	}
	if roleID.Valid {
		u.RoleID = int(roleID.Int64)
	}
	if ph.Valid {
		u.PasswordHash = ph.String
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	if rr.Valid {
		u.RefreshRevoked = rr.Bool
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("user get by id %d: %w", id, err)
	}
	return u, nil
}

// GetByUsername ищет без учёта регистра; при дублях берём меньший id.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) ORDER BY id LIMIT 1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, username))
	if err != nil {
		return nil, fmt.Errorf("user get by username: %w", err)
	}
	return u, nil
}

// ===== refresh helpers =====

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	res, err := r.DB.ExecContext(ctx, q, token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return affectedOrNotFound(res)
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, newToken, newExpiresAt, oldToken))
	if err != nil {
		return nil, fmt.Errorf("user rotate refresh: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE refresh_token = $1`
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, token))
	if err != nil {
		return nil, fmt.Errorf("user get by refresh token: %w", err)
	}
	return u, nil
}
