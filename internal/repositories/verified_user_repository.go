package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"vregistry/internal/models"
)

type VerifiedUserRepository interface {
	GetByID(ctx context.Context, id int) (*models.VerifiedUser, error)
	GetByValue(ctx context.Context, value string) (*models.VerifiedUser, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedUser], error)
	Create(ctx context.Context, v *models.VerifiedUser) (int, error)
	Update(ctx context.Context, v *models.VerifiedUser) error
	Delete(ctx context.Context, id int) error
}

type verifiedUserRepository struct {
	DB *sql.DB
}

func NewVerifiedUserRepository(db *sql.DB) VerifiedUserRepository {
	return &verifiedUserRepository{DB: db}
}

// запись всегда читается вместе с пользователем
const verifiedUserSelect = `
	vu.id, vu.user_id, vu.iin, vu.passport_number,
	vu.will_act_at, vu.verified_at, vu.is_waiting_for_response, vu.is_verified, vu.is_rejected,
	vu.description, vu.response, vu.verified_by_name, vu.verified_by_id,
	vu.created_at, vu.updated_at,
	u.id, u.username, COALESCE(u.full_name,''), u.iin, u.passport_number,
	COALESCE(u.email,''), COALESCE(u.role_id,0), u.created_at`

const verifiedUserFrom = `verified_users vu JOIN users u ON u.id = vu.user_id`

var verifiedUserList = listSpec{
	columns:  verifiedUserSelect,
	from:     verifiedUserFrom,
	idColumn: "vu.id",
	searchCols: []string{
		"vu.iin", "vu.passport_number", "vu.description", "vu.verified_by_name",
		"u.full_name", "u.username",
	},
	orderCols: map[string]string{
		"id":              "vu.id",
		"user_id":         "vu.user_id",
		"iin":             "vu.iin",
		"passport_number": "vu.passport_number",
		"will_act_at":     "vu.will_act_at",
		"verified_at":     "vu.verified_at",
		"created_at":      "vu.created_at",
		"updated_at":      "vu.updated_at",
		"full_name":       "u.full_name",
	},
}

func scanVerifiedUser(row rowScanner) (*models.VerifiedUser, error) {
	v := &models.VerifiedUser{User: &models.User{}}
	u := v.User
	if err := row.Scan(
		&v.ID, &v.UserID, &v.IIN, &v.PassportNumber,
		&v.WillActAt, &v.VerifiedAt, &v.IsWaitingForResponse, &v.IsVerified, &v.IsRejected,
		&v.Description, &v.Response, &v.VerifiedByName, &v.VerifiedByID,
		&v.CreatedAt, &v.UpdatedAt,
		&u.ID, &u.Username, &u.FullName, &u.IIN, &u.PassportNumber,
		&u.Email, &u.RoleID, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *verifiedUserRepository) GetByID(ctx context.Context, id int) (*models.VerifiedUser, error) {
	q := `SELECT` + verifiedUserSelect + ` FROM ` + verifiedUserFrom + ` WHERE vu.id = $1`
	v, err := scanVerifiedUser(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("verified_user get %d: %w", id, err)
	}
	return v, nil
}

// GetByValue ищет точное совпадение ИИН или номера паспорта без учёта регистра, первый по id.
func (r *verifiedUserRepository) GetByValue(ctx context.Context, value string) (*models.VerifiedUser, error) {
	q := `SELECT` + verifiedUserSelect + ` FROM ` + verifiedUserFrom + `
		WHERE LOWER(vu.iin) = LOWER($1) OR LOWER(vu.passport_number) = LOWER($1)
		ORDER BY vu.id
		LIMIT 1`
	v, err := scanVerifiedUser(r.DB.QueryRowContext(ctx, q, value))
	if err != nil {
		return nil, fmt.Errorf("verified_user get by value: %w", err)
	}
	return v, nil
}

func (r *verifiedUserRepository) List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedUser], error) {
	page, err := paginate(ctx, r.DB, verifiedUserList, f, scanVerifiedUser)
	if err != nil {
		return nil, fmt.Errorf("verified_user %w", err)
	}
	return page, nil
}

func (r *verifiedUserRepository) Create(ctx context.Context, v *models.VerifiedUser) (int, error) {
	const q = `
		INSERT INTO verified_users (
			user_id, iin, passport_number,
			will_act_at, verified_at, is_waiting_for_response, is_verified, is_rejected,
			description, response, verified_by_name, verified_by_id
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`
	var id int
	err := r.DB.QueryRowContext(ctx, q,
		v.UserID, v.IIN, v.PassportNumber,
		v.WillActAt, v.VerifiedAt, v.IsWaitingForResponse, v.IsVerified, v.IsRejected,
		v.Description, v.Response, v.VerifiedByName, v.VerifiedByID,
	).Scan(&id)
	if err != nil {
		return 0, mapWriteErr("verified_user create", err)
	}
	v.ID = id
	return id, nil
}

func (r *verifiedUserRepository) Update(ctx context.Context, v *models.VerifiedUser) error {
	const q = `
		UPDATE verified_users
		SET
			user_id=$1,
			iin=$2,
			passport_number=$3,
			will_act_at=$4,
			verified_at=$5,
			is_waiting_for_response=$6,
			is_verified=$7,
			is_rejected=$8,
			description=$9,
			response=$10,
			verified_by_name=$11,
			verified_by_id=$12,
			updated_at=NOW()
		WHERE id=$13
	`
	res, err := r.DB.ExecContext(ctx, q,
		v.UserID, v.IIN, v.PassportNumber,
		v.WillActAt, v.VerifiedAt, v.IsWaitingForResponse, v.IsVerified, v.IsRejected,
		v.Description, v.Response, v.VerifiedByName, v.VerifiedByID,
		v.ID,
	)
	if err != nil {
		return mapWriteErr("verified_user update", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("verified_user update %d: %w", v.ID, err)
	}
	return nil
}

func (r *verifiedUserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM verified_users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("verified_user delete %d: %w", id, err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("verified_user delete %d: %w", id, err)
	}
	return nil
}
