package model

import (
	"context"
	"time"
)

const (
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionLoginFailed   = "login_failed"
	AuditActionRefresh       = "refresh"
	AuditActionRefreshReplay = "refresh_replay"
	AuditActionLogout        = "logout"
)

// AuthAuditLog is an append-only record of authentication events, written by
// the worker from the asynq queue.
type AuthAuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	Action    string    `json:"action" gorm:"type:varchar(32);index"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditService interface {
	EnqueueAuthEvent(ctx context.Context, userID, email, action string) error
}
