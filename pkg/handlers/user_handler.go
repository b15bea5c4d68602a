package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/model"
)

type CreateUserReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

// CreateUser registers a user record. Identity itself is owned by the
// surrounding application; tuttle just needs the row to hang tokens
// and repositories off.
func CreateUser(c *gin.Context) {
	var req CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := model.User{Username: req.Username, Email: req.Email}
	if err := model.AddUser(&user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}
