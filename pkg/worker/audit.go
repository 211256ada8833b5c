package worker

import (
	"context"
	"encoding/json"
	"time"

	"fitfest/pkg/model"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const (
	TypeAuthAudit = "auth:audit"
)

// Task payload for auth audit trail tasks.
type authAuditPayload struct {
	UserID string
	Email  string
	Action string
	At     time.Time
}

type AuditTaskHandler struct {
	db *gorm.DB
}

func NewAuditTaskHandler(db *gorm.DB) *AuditTaskHandler {
	return &AuditTaskHandler{db: db}
}

func (ath *AuditTaskHandler) HandleAuditTask(ctx context.Context, t *asynq.Task) error {
	var p authAuditPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}

	record := &model.AuthAuditLog{
		UserID:    p.UserID,
		Email:     p.Email,
		Action:    p.Action,
		CreatedAt: p.At,
	}
	return ath.db.WithContext(ctx).Create(record).Error
}

func RegisterTaskHandler(mux *asynq.ServeMux, handler *AuditTaskHandler) {
	mux.HandleFunc(TypeAuthAudit, handler.HandleAuditTask)
}
