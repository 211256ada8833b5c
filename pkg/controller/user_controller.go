package controller

import (
	"errors"
	"net/http"

	"fitfest/pkg/model"
	"fitfest/pkg/service"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	authSvc model.AuthService
}

func NewUserController(authSvc model.AuthService) *UserController {
	return &UserController{
		authSvc: authSvc,
	}
}

// Profile godoc
// @Summary Profile
// @Description Fetches the profile of the authenticated user
// @Tags User
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.UserResponse "Profile successfully retrieved"
// @Failure 401 {object} model.Response "Unauthorized: Invalid or expired token"
// @Failure 404 {object} model.Response "User not found"
// @Failure 500 {object} model.Response "Internal Server Error"
// @Router /users/profile [get]
func (ctrl *UserController) Profile(c *gin.Context) {
	identity, exist := RetrieveIdentity(c, true)
	if !exist {
		return
	}
	profile, err := ctrl.authSvc.GetUserByID(c, identity.UserID)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, model.Response{
			Msg: "User not found",
		})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.Response{
			Msg: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, model.UserResponse{
		Data: profile.Sanitized(),
	})
}
