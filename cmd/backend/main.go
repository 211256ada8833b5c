package main

import (
	"fmt"

	"fitfest/docs"
	"fitfest/pkg/bootstrap"
	"fitfest/pkg/router"
	"fitfest/pkg/service"
	"fitfest/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

func SetUpSwagger(spec *swag.Spec, app *bootstrap.Application) {
	spec.BasePath = "/"
	spec.Host = fmt.Sprintf("%s:%d", "localhost", app.Env.Server.Port)
	spec.Schemes = []string{"http", "https"}
	spec.Title = "Fitfest Backend API"
	spec.Description = "Session authentication core for the Fitfest fitness platform"
}

func SetUpAsynqMon(app *bootstrap.Application) {
	h := asynqmon.New(asynqmon.Options{
		RootPath:     "/monitoring", // RootPath specifies the root for asynqmon app
		RedisConnOpt: asynq.RedisClientOpt{Addr: app.Cache.Options().Addr},
	})

	monitoringGroup := app.Engine.Group(h.RootPath())
	monitoringGroup.Any("/*action", gin.WrapH(h))
}

func main() {
	// Init config
	app := bootstrap.App()

	// Init services
	sessionStore := session.NewStore(app.Cache, app.RedisLock, app.Env.JWT.RefreshTokenExpiry)
	auditService := service.NewAuditService(app.AsynqClient)
	authService := service.NewAuthService(app.Conn, app.Cache, sessionStore, auditService, &app.Env.JWT)

	services := &bootstrap.Services{
		AuthService:  authService,
		AuditService: auditService,
	}

	// Init routes
	router.RegisterRoutes(app, services)

	// setup swagger
	// @securityDefinitions.apikey ApiKeyAuth
	// @in header
	// @name Authorization
	SetUpSwagger(docs.SwaggerInfo, app)
	SetUpAsynqMon(app)
	app.Engine.GET("/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerfiles.Handler,
			ginSwagger.DeepLinking(true),
		),
	)

	app.Run()
}
