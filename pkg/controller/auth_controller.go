package controller

import (
	"errors"
	"net/http"

	tokensvc "fitfest/internal/token"
	"fitfest/pkg/bootstrap"
	"fitfest/pkg/middleware"
	"fitfest/pkg/model"
	"fitfest/pkg/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authSvc model.AuthService
	env     *bootstrap.Env
}

func NewAuthController(authSvc model.AuthService, env *bootstrap.Env) *AuthController {
	return &AuthController{
		authSvc: authSvc,
		env:     env,
	}
}

// Register godoc
// @Summary Register
// @Description Creates a credential and immediately issues a session for it
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Register Request"
// @Success 201 {object} model.SessionResponse "Account created, session issued"
// @Failure 400 {object} model.Response "Bad Request - Invalid input data"
// @Failure 409 {object} model.Response "Conflict - Email already registered"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var request model.RegisterRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.Response{
			Msg: err.Error(),
		})
		return
	}

	user, pair, err := ctrl.authSvc.Register(c, &request)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, model.Response{
			Msg: "Email already registered",
		})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}

	if !ctrl.setSessionCookies(c, pair) {
		return
	}
	c.JSON(http.StatusCreated, model.SessionResponse{
		User:        user,
		AccessToken: pair.AccessToken,
	})
}

// Login godoc
// @Summary Login
// @Description Verifies a credential and issues access/refresh token cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login Request"
// @Success 200 {object} model.SessionResponse "Login successful"
// @Failure 400 {object} model.Response "Bad Request - Invalid input data"
// @Failure 401 {object} model.Response "Unauthorized - Invalid email or password"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var request model.LoginRequest
	if err := c.ShouldBind(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, model.Response{
			Msg: err.Error(),
		})
		return
	}

	user, pair, err := ctrl.authSvc.Login(c, &request)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		// Unknown email and wrong password answer identically.
		c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
			Msg: "Invalid email or password",
		})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}

	if !ctrl.setSessionCookies(c, pair) {
		return
	}
	c.JSON(http.StatusOK, model.SessionResponse{
		User:        user,
		AccessToken: pair.AccessToken,
	})
}

// RefreshToken godoc
// @Summary Refresh User Token
// @Description Rotates the refresh token and mints a new access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Success 200 {object} model.TokenResponse "Access and Refresh Tokens successfully rotated"
// @Failure 401 {object} model.Response "Unauthorized - Missing, expired or replayed refresh token"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /auth/refresh [post]
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
			Msg: "refresh token not found",
		})
		return
	}

	pair, err := ctrl.authSvc.Refresh(c, refreshToken)
	switch {
	case errors.Is(err, service.ErrSessionExpired):
		ctrl.clearSessionCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, model.Response{
			Msg: "session expired",
		})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}

	if !ctrl.setSessionCookies(c, pair) {
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{
		Data: pair,
	})
}

// Logout godoc
// @Summary User logout
// @Description Revokes the current access token, deletes the refresh session and clears cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Response "Logout successful"
// @Failure 401 {object} model.Response "Unauthorized - No valid access token"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	var accessToken string
	for _, extract := range middleware.DefaultExtractors() {
		if token, ok := extract(c); ok {
			accessToken = token
			break
		}
	}
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)

	if err := ctrl.authSvc.Logout(c, accessToken, refreshToken); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}

	ctrl.clearSessionCookies(c)
	c.JSON(http.StatusOK, model.Response{
		Msg: "Logout success",
	})
}

// CSRFToken godoc
// @Summary Get CSRF token
// @Description Mints the double-submit token, sets it as a readable cookie and returns it
// @Tags Authentication
// @Produce json
// @Success 200 {object} model.CSRFTokenResponse "Token minted"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /csrf/token [get]
func (ctrl *AuthController) CSRFToken(c *gin.Context) {
	token, err := tokensvc.MintCSRFToken()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}

	// Readable by the frontend so it can mirror the value into the header.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CSRFTokenCookie, token, int(ctrl.env.JWT.RefreshTokenExpiry), "/", ctrl.env.Cookie.Domain, ctrl.env.Cookie.Secure, false)
	c.JSON(http.StatusOK, model.CSRFTokenResponse{
		Token: token,
	})
}

// setSessionCookies sets the full cookie trio for an issued session. Returns
// false after writing an error response if the CSRF token cannot be minted.
func (ctrl *AuthController) setSessionCookies(c *gin.Context, pair *model.TokenPair) bool {
	csrfToken, err := tokensvc.MintCSRFToken()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return false
	}

	domain := ctrl.env.Cookie.Domain
	secure := ctrl.env.Cookie.Secure
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(ctrl.env.JWT.AccessTokenExpiry), "/", domain, secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(ctrl.env.JWT.RefreshTokenExpiry), "/", domain, secure, true)
	c.SetCookie(middleware.CSRFTokenCookie, csrfToken, int(ctrl.env.JWT.RefreshTokenExpiry), "/", domain, secure, false)
	return true
}

func (ctrl *AuthController) clearSessionCookies(c *gin.Context) {
	domain := ctrl.env.Cookie.Domain
	secure := ctrl.env.Cookie.Secure
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", domain, secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", domain, secure, true)
	c.SetCookie(middleware.CSRFTokenCookie, "", -1, "/", domain, secure, false)
}
