package router

import (
	"fitfest/pkg/bootstrap"
	"fitfest/pkg/controller"
)

func RegisterUserRoutes(app *bootstrap.Application, controller *controller.UserController) {
	r := app.Engine.Group("/users")

	r.GET("/profile", controller.Profile)
}
