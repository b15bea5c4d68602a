package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/common"
	"github.com/girbons/tuttle/pkg/model"
)

// RequireUser resolves the acting user from the X-Tuttle-User header.
// Session handling and authentication live in the fronting deployment;
// tuttle only needs to know who the request is for.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(common.UserHeader)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, err := model.GetUserByUsername(username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.Set("user", *user)
		c.Next()
	}
}

func currentUser(c *gin.Context) (model.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return model.User{}, false
	}
	return value.(model.User), true
}
