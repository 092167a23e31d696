package validators

import (
	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type PasswordResetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=100"`
}

type UpdateProfileRequest struct {
	Email           *string `json:"email" validate:"omitempty,email"`
	Username        *string `json:"username" validate:"omitempty,min=3,max=50"`
	FullName        *string `json:"full_name"`
	CurrentPassword *string `json:"current_password" validate:"omitempty,min=8"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=100"`
}

func ValidateRegisterRequest(c *gin.Context) (*RegisterRequest, bool) {
	var req RegisterRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidateLoginRequest(c *gin.Context) (*LoginRequest, bool) {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidatePasswordResetRequestRequest(c *gin.Context) (*PasswordResetRequestRequest, bool) {
	var req PasswordResetRequestRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidatePasswordResetRequest(c *gin.Context) (*PasswordResetRequest, bool) {
	var req PasswordResetRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}

func ValidateUpdateProfileRequest(c *gin.Context) (*UpdateProfileRequest, bool) {
	var req UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	return &req, true
}
