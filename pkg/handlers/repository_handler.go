package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/model"
)

// ListRepositories returns the acting user's synchronized repository
// records. Read-only display surface; sync is the only writer.
func ListRepositories(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	repos, err := model.ListRepositoriesForUser(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, repos)
}

// ListDeployKeys returns the acting user's cached deploy keys, joined
// through their repositories.
func ListDeployKeys(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	keys, err := model.ListDeployKeysForUser(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, keys)
}
