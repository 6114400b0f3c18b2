package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the applicant self-registration payload.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        UserInfo  `json:"user"`
}

// AdminLoginResponse extends LoginResponse with staff role details.
type AdminLoginResponse struct {
	LoginResponse
	RoleLabel   string        `json:"role_label"`
	Department  string        `json:"department"`
	Permissions PermissionSet `json:"permissions"`
}

// ChangePasswordRequest payload for updating the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       int64    `json:"id"`
	UserCode string   `json:"user_code"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens. RoleLabel is set
// for staff tokens only and feeds the permission gate.
type JWTClaims struct {
	UserID    int64    `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	RoleLabel string   `json:"role_label,omitempty"`
	jwt.RegisteredClaims
}

// Permissions resolves the claim's staff permission set. Applicant tokens
// carry no role label and resolve to the empty set.
func (c *JWTClaims) Permissions() PermissionSet {
	return PermissionsFor(c.RoleLabel)
}
