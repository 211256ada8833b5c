package bootstrap

import (
	"fitfest/pkg/model"
)

type Services struct {
	AuthService  model.AuthService
	AuditService model.AuditService
}
