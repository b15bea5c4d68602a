package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/model"
)

type CreateProviderReq struct {
	Name string `json:"name" binding:"required"`
}

func ListProviders(c *gin.Context) {
	providers, err := model.ListProviders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, providers)
}

func CreateProvider(c *gin.Context) {
	var req CreateProviderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := model.Provider{Name: req.Name}
	if err := model.DB.Where("name = ?", req.Name).FirstOrCreate(&provider).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, provider)
}
