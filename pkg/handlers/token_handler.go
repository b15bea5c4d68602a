package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/model"
	"gorm.io/gorm"
)

type UpsertTokenReq struct {
	ProviderID uint   `json:"provider_id" binding:"required"`
	Title      string `json:"title"`
	Token      string `json:"token" binding:"required"`
}

func ListTokens(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	tokens, err := model.ListTokensForUser(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// UpsertToken registers or replaces the acting user's token for one
// provider. One token per (user, provider).
func UpsertToken(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpsertTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider model.Provider
	if err := model.DB.First(&provider, req.ProviderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		return
	}

	var token model.Token
	err := model.DB.Where("user_id = ? AND provider_id = ?", u.ID, req.ProviderID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			token = model.Token{
				Title:      req.Title,
				Value:      req.Token,
				UserID:     u.ID,
				ProviderID: req.ProviderID,
			}
			if err := model.DB.Create(&token).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			model.DB.Preload("Provider").First(&token, token.ID)
			c.JSON(http.StatusCreated, token)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token.Title = req.Title
	token.Value = req.Token
	if err := model.DB.Save(&token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	model.DB.Preload("Provider").First(&token, token.ID)
	c.JSON(http.StatusOK, token)
}

func DeleteToken(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	result := model.DB.Where("id = ? AND user_id = ?", id, u.ID).Delete(&model.Token{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
