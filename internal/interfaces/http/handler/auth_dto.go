package handler

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest carries username-or-email credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// ChangePasswordRequest requires the old password as proof of possession.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

type CurrentUserResponse struct {
	User        AuthUserResponse `json:"user"`
	Permissions []string         `json:"permissions"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

// TokenResponse mirrors the issued token pair on the wire.
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse is the user shape embedded in login and /auth/me
// responses. Optional profile fields are omitted when unset.
type AuthUserResponse struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email,omitempty"`
	EmployeeCode string     `json:"employee_code,omitempty"`
	Designation  string     `json:"designation,omitempty"`
	Status       string     `json:"status"`
	JoinedAt     *time.Time `json:"joined_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	Roles        []string   `json:"roles"`
	Permissions  []string   `json:"permissions"`
}
