package dtos

import (
	shared_dtos "github.com/imkarn-it/my-village-sub003/backend/shared/go-dtos"
)

// RegisterRequest is a resident's self-registration. The account stays
// pending until the project office approves it.
type RegisterRequest struct {
	ProjectCode string `json:"project_code" validate:"required,max=32"`
	HouseNumber string `json:"house_number" validate:"required,max=32"`
	FirstName   string `json:"first_name" validate:"required,max=100,no_xss"`
	LastName    string `json:"last_name" validate:"max=100,no_xss"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,thai_phone"`
	IDCard      string `json:"id_card,omitempty" validate:"omitempty,thai_id"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResponse struct {
	Message string           `json:"message"`
	User    shared_dtos.User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	User        shared_dtos.User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}
