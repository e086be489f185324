package dto

import "time"

type RegisterRequestDTO struct {
	Name     string `json:"name" minLength:"1" maxLength:"200"`
	Email    string `json:"email" format:"email"`
	Password string `json:"password" minLength:"8" maxLength:"72"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequestDTO carries either email and password or an identity
// provider ID token, depending on how the server verifies admins.
type AdminLoginRequestDTO struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	IDToken  string `json:"id_token,omitempty"`
}

type UserResponseDTO struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionResponseDTO struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      UserResponseDTO `json:"user"`
}
