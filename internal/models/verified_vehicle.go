package models

import "time"

// VerifiedVehicle хранит решение по проверке транспорта, CarNumber закрепляется при создании.
type VerifiedVehicle struct {
	ID        int     `json:"id"`
	VehicleID int     `json:"vehicle_id"`
	CarNumber *string `json:"car_number"`
	Decision
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Vehicle *Vehicle `json:"vehicle,omitempty"`
}

type CreateVerifiedVehicleRequest struct {
	VehicleID int     `json:"vehicle_id" binding:"required"`
	CarNumber *string `json:"car_number"`
	DecisionRequest
}

type UpdateVerifiedVehicleRequest struct {
	VehicleID int     `json:"vehicle_id" binding:"required"`
	CarNumber *string `json:"car_number"`
	DecisionRequest
}
