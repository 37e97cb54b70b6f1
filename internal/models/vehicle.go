package models

import "time"

// Vehicle is owned by the fleet registry; verified records only reference it.
type Vehicle struct {
	ID        int       `json:"id"`
	CarNumber string    `json:"car_number"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
