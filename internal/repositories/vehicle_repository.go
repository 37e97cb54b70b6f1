package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"vregistry/internal/models"
)

type VehicleRepository interface {
	GetByID(ctx context.Context, id int) (*models.Vehicle, error)
}

type vehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(db *sql.DB) VehicleRepository {
	return &vehicleRepository{DB: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	const q = `SELECT id, car_number, COALESCE(model,''), created_at FROM vehicles WHERE id = $1`
	v := &models.Vehicle{}
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&v.ID, &v.CarNumber, &v.Model, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("vehicle get by id %d: %w", id, err)
	}
	return v, nil
}
