package router

import (
	"net/http"

	"fitfest/pkg/bootstrap"
	"fitfest/pkg/controller"
	"fitfest/pkg/middleware"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gin-gonic/gin"
)

// PublicRoutes is the explicit route table of endpoints that bypass the guard
// chain. Anything not listed here fails closed: no token, no admission.
func PublicRoutes() mapset.Set[string] {
	return mapset.NewSet(
		middleware.RouteKey(http.MethodPost, "/auth/login"),
		middleware.RouteKey(http.MethodPost, "/auth/register"),
		middleware.RouteKey(http.MethodPost, "/auth/refresh"),
		middleware.RouteKey(http.MethodGet, "/csrf/token"),
		middleware.RouteKey(http.MethodGet, "/healthz"),
	)
}

func RegisterRoutes(app *bootstrap.Application, services *bootstrap.Services) {
	public := PublicRoutes()

	// The guard chain is an explicit ordered pipeline: CORS, then CSRF
	// admission, then identity. Ordering is part of the contract; the CSRF
	// guard must run even when the identity guard would reject the request.
	app.Engine.Use(
		middleware.CORSMiddleware(),
		middleware.CSRFMiddleware(public),
		middleware.AuthMiddleware(app.Env.JWT.AccessTokenSecret, app.Cache, public, middleware.DefaultExtractors()...),
	)

	app.Engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	authController := controller.NewAuthController(services.AuthService, app.Env)
	RegisterAuthRoutes(app, authController)

	userController := controller.NewUserController(services.AuthService)
	RegisterUserRoutes(app, userController)
}
