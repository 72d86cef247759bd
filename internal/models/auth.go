package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for the mocked login flow.
type LoginRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"max=256"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=admin student professor"`
	IP       string   `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        User      `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Session is the persisted logged-in user record.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// JWTClaims represents the JWT payload for access tokens. RegisteredClaims.ID holds the session id.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Department string   `json:"department,omitempty"`
	Semester   int      `json:"semester,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts claims back into the user record they were issued for.
func (c *JWTClaims) Actor() User {
	return User{
		ID:         c.UserID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       c.Role,
		Department: c.Department,
		Semester:   c.Semester,
	}
}
