package controller

import (
	"fitfest/pkg/model"

	"github.com/gin-gonic/gin"
)

// RetrieveIdentity retrieves the identity of the user from the context.
// raise: Raise a http error when the identity doesn't exist.
func RetrieveIdentity(c *gin.Context, raise bool) (identity *model.Identity, exist bool) {
	id, exist := c.Get("identity")
	if !exist {
		if raise {
			c.AbortWithStatusJSON(401, model.Response{
				Msg: "Login Required",
			})
		}
		return nil, false
	}
	identity = id.(*model.Identity)
	return
}
