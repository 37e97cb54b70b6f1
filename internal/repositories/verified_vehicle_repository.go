package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"vregistry/internal/models"
)

type VerifiedVehicleRepository interface {
	GetByID(ctx context.Context, id int) (*models.VerifiedVehicle, error)
	GetByValue(ctx context.Context, value string) (*models.VerifiedVehicle, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedVehicle], error)
	Create(ctx context.Context, v *models.VerifiedVehicle) (int, error)
	Update(ctx context.Context, v *models.VerifiedVehicle) error
	Delete(ctx context.Context, id int) error
}

type verifiedVehicleRepository struct {
	DB *sql.DB
}

func NewVerifiedVehicleRepository(db *sql.DB) VerifiedVehicleRepository {
	return &verifiedVehicleRepository{DB: db}
}

const verifiedVehicleSelect = `
	vv.id, vv.vehicle_id, vv.car_number,
	vv.will_act_at, vv.verified_at, vv.is_waiting_for_response, vv.is_verified, vv.is_rejected,
	vv.description, vv.response, vv.verified_by_name, vv.verified_by_id,
	vv.created_at, vv.updated_at,
	v.id, v.car_number, COALESCE(v.model,''), v.created_at`

const verifiedVehicleFrom = `verified_vehicles vv JOIN vehicles v ON v.id = vv.vehicle_id`

var verifiedVehicleList = listSpec{
	columns:  verifiedVehicleSelect,
	from:     verifiedVehicleFrom,
	idColumn: "vv.id",
	searchCols: []string{
		"vv.car_number", "vv.description", "vv.verified_by_name", "v.model",
	},
	orderCols: map[string]string{
		"id":          "vv.id",
		"vehicle_id":  "vv.vehicle_id",
		"car_number":  "vv.car_number",
		"will_act_at": "vv.will_act_at",
		"verified_at": "vv.verified_at",
		"created_at":  "vv.created_at",
		"updated_at":  "vv.updated_at",
	},
}

func scanVerifiedVehicle(row rowScanner) (*models.VerifiedVehicle, error) {
	v := &models.VerifiedVehicle{Vehicle: &models.Vehicle{}}
	veh := v.Vehicle
	if err := row.Scan(
		&v.ID, &v.VehicleID, &v.CarNumber,
		&v.WillActAt, &v.VerifiedAt, &v.IsWaitingForResponse, &v.IsVerified, &v.IsRejected,
		&v.Description, &v.Response, &v.VerifiedByName, &v.VerifiedByID,
		&v.CreatedAt, &v.UpdatedAt,
		&veh.ID, &veh.CarNumber, &veh.Model, &veh.CreatedAt,
	); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *verifiedVehicleRepository) GetByID(ctx context.Context, id int) (*models.VerifiedVehicle, error) {
	q := `SELECT` + verifiedVehicleSelect + ` FROM ` + verifiedVehicleFrom + ` WHERE vv.id = $1`
	v, err := scanVerifiedVehicle(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("verified_vehicle get %d: %w", id, err)
	}
	return v, nil
}

func (r *verifiedVehicleRepository) GetByValue(ctx context.Context, value string) (*models.VerifiedVehicle, error) {
	q := `SELECT` + verifiedVehicleSelect + ` FROM ` + verifiedVehicleFrom + `
		WHERE LOWER(vv.car_number) = LOWER($1)
		ORDER BY vv.id
		LIMIT 1`
	v, err := scanVerifiedVehicle(r.DB.QueryRowContext(ctx, q, value))
	if err != nil {
		return nil, fmt.Errorf("verified_vehicle get by value: %w", err)
	}
	return v, nil
}

func (r *verifiedVehicleRepository) List(ctx context.Context, f models.ListFilter) (*models.Page[*models.VerifiedVehicle], error) {
	page, err := paginate(ctx, r.DB, verifiedVehicleList, f, scanVerifiedVehicle)
	if err != nil {
		return nil, fmt.Errorf("verified_vehicle %w", err)
	}
	return page, nil
}

func (r *verifiedVehicleRepository) Create(ctx context.Context, v *models.VerifiedVehicle) (int, error) {
	const q = `
		INSERT INTO verified_vehicles (
			vehicle_id, car_number,
			will_act_at, verified_at, is_waiting_for_response, is_verified, is_rejected,
			description, response, verified_by_name, verified_by_id
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	var id int
	err := r.DB.QueryRowContext(ctx, q,
		v.VehicleID, v.CarNumber,
		v.WillActAt, v.VerifiedAt, v.IsWaitingForResponse, v.IsVerified, v.IsRejected,
		v.Description, v.Response, v.VerifiedByName, v.VerifiedByID,
	).Scan(&id)
	if err != nil {
		return 0, mapWriteErr("verified_vehicle create", err)
	}
	v.ID = id
	return id, nil
}

func (r *verifiedVehicleRepository) Update(ctx context.Context, v *models.VerifiedVehicle) error {
	const q = `
		UPDATE verified_vehicles
		SET
			vehicle_id=$1,
			car_number=$2,
			will_act_at=$3,
			verified_at=$4,
			is_waiting_for_response=$5,
			is_verified=$6,
			is_rejected=$7,
			description=$8,
			response=$9,
			verified_by_name=$10,
			verified_by_id=$11,
			updated_at=NOW()
		WHERE id=$12
	`
	res, err := r.DB.ExecContext(ctx, q,
		v.VehicleID, v.CarNumber,
		v.WillActAt, v.VerifiedAt, v.IsWaitingForResponse, v.IsVerified, v.IsRejected,
		v.Description, v.Response, v.VerifiedByName, v.VerifiedByID,
		v.ID,
	)
	if err != nil {
		return mapWriteErr("verified_vehicle update", err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("verified_vehicle update %d: %w", v.ID, err)
	}
	return nil
}

func (r *verifiedVehicleRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM verified_vehicles WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("verified_vehicle delete %d: %w", id, err)
	}
	if err := affectedOrNotFound(res); err != nil {
		return fmt.Errorf("verified_vehicle delete %d: %w", id, err)
	}
	return nil
}
