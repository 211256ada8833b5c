package router

import (
	"fitfest/pkg/bootstrap"
	"fitfest/pkg/controller"
)

func RegisterAuthRoutes(app *bootstrap.Application, controller *controller.AuthController) {
	r := app.Engine.Group("/auth")

	r.POST("/login", controller.Login)
	r.POST("/register", controller.Register)
	r.POST("/refresh", controller.RefreshToken)
	r.POST("/logout", controller.Logout)

	app.Engine.GET("/csrf/token", controller.CSRFToken)
}
