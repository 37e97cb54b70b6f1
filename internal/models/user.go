package models

import "time"

// User: сотрудник организации. Таблица users ведётся другой системой,
// здесь только чтение (плюс refresh-токены локального режима).
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	IIN            *string   `json:"iin"`
	PassportNumber *string   `json:"passport_number"`
	Email          string    `json:"email"`
	RoleID         int       `json:"role_id"`
	PasswordHash   string    `json:"-"` // не отдаём наружу
	CreatedAt      time.Time `json:"created_at"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair is returned by both authentication modes.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
