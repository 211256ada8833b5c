package service

import (
	"context"
	"encoding/json"
	"time"

	"fitfest/pkg/model"

	"github.com/hibiken/asynq"
)

// A list of task types.
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

type AsynqAuditService struct {
	client *asynq.Client
}

func NewAuditService(client *asynq.Client) model.AuditService {
	return &AsynqAuditService{client: client}
}

func (as *AsynqAuditService) EnqueueAuthEvent(ctx context.Context, userID, email, action string) error {
	payload, err := json.Marshal(authAuditPayload{
		UserID: userID,
		Email:  email,
		Action: action,
		At:     time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = as.client.EnqueueContext(ctx, asynq.NewTask(TypeAuthAudit, payload), asynq.MaxRetry(3))
	return err
}
