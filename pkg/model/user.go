package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleMember  = "MEMBER"
	RoleTrainer = "TRAINER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID           string         `json:"id" gorm:"type:varchar(36);primary_key"`
	Name         string         `json:"name" gorm:"type:varchar(255)"`
	Email        string         `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255)"`
	Role         string         `json:"role" gorm:"type:varchar(32);default:MEMBER"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Sanitized returns a copy safe to put in a response body. The password hash
// is already hidden from JSON; this also keeps it out of handlers that log or
// re-marshal the user.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=MEMBER TRAINER ADMIN"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	Msg  string `json:"msg,omitempty"`
	Data *User  `json:"data"`
}

// SessionResponse is returned by login and register. AccessToken duplicates
// the access_token cookie for legacy bearer clients.
type SessionResponse struct {
	Msg         string `json:"msg,omitempty"`
	User        *User  `json:"user"`
	AccessToken string `json:"access_token,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, *TokenPair, error)
	Login(ctx context.Context, req *LoginRequest) (*User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	GetUserByID(ctx context.Context, id string) (*User, error)
}
