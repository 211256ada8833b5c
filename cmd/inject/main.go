package main

import (
	"context"
	"log"

	"fitfest/pkg/bootstrap"
	"fitfest/pkg/model"
	"fitfest/pkg/service"
	"fitfest/pkg/session"

	"github.com/go-faker/faker/v4"
)

const seedCount = 20

var roles = []string{model.RoleMember, model.RoleMember, model.RoleMember, model.RoleTrainer}

// Seeds fake accounts through the real registration flow so the seeded rows
// carry proper hashes and sessions.
func main() {
	app := bootstrap.App()

	sessionStore := session.NewStore(app.Cache, app.RedisLock, app.Env.JWT.RefreshTokenExpiry)
	authService := service.NewAuthService(app.Conn, app.Cache, sessionStore, nil, &app.Env.JWT)

	ctx := context.Background()
	for i := 0; i < seedCount; i++ {
		req := &model.RegisterRequest{
			Name:     faker.Name(),
			Email:    faker.Email(),
			Password: faker.Password(),
			Role:     roles[i%len(roles)],
		}
		user, _, err := authService.Register(ctx, req)
		if err != nil {
			log.Printf("seed %s: %v", req.Email, err)
			continue
		}
		log.Printf("seeded %s (%s)", user.Email, user.Role)
	}
}
