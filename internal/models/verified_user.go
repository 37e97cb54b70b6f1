package models

import "time"

// VerifiedUser хранит решение по проверке пользователя.
// IIN и PassportNumber копируются из users при создании и дальше не меняются.
type VerifiedUser struct {
	ID             int     `json:"id"`
	UserID         int     `json:"user_id"`
	IIN            *string `json:"iin"`
	PassportNumber *string `json:"passport_number"`
	Decision
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

type CreateVerifiedUserRequest struct {
	UserID int `json:"user_id" binding:"required"`
	// клиентские значения игнорируются, берём из users
	IIN            *string `json:"iin"`
	PassportNumber *string `json:"passport_number"`
	DecisionRequest
}

type UpdateVerifiedUserRequest struct {
	UserID         int     `json:"user_id" binding:"required"`
	IIN            *string `json:"iin"`
	PassportNumber *string `json:"passport_number"`
	DecisionRequest
}
