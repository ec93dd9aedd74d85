package models

import (
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"` // bcrypt hash, never serialized
	CreatedAt      time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

// UserOut is the public shape of a user embedded in responses.
type UserOut struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Out returns the public projection of u.
func (u *User) Out() *UserOut {
	if u == nil {
		return nil
	}
	return &UserOut{ID: u.ID, Username: u.Username}
}

type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=1,max=150"`
	Password string `json:"password" form:"password" validate:"required,min=1,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
