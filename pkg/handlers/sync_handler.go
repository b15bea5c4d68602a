package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/pkg/common"
	"github.com/girbons/tuttle/pkg/model"
	"github.com/girbons/tuttle/pkg/remote"
	"github.com/girbons/tuttle/pkg/sync"
)

// SyncHandler triggers synchronization runs over HTTP. The remote
// factory is injected so tests can point runs at a fake provider.
type SyncHandler struct {
	Factory remote.Factory
}

func NewSyncHandler(factory remote.Factory) *SyncHandler {
	return &SyncHandler{Factory: factory}
}

// TriggerSync runs one synchronization for the acting user, optionally
// narrowed to ?provider=. One run per user at a time is the caller's
// responsibility; two concurrent runs race on the deploy-key swap.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), common.SyncTimeout)
	defer cancel()

	ref := sync.TokenRef{UserID: u.ID, Provider: c.Query("provider")}
	err := sync.New(model.DB, h.Factory).Run(ctx, ref)
	if err != nil {
		c.JSON(syncErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "synchronized"})
}

func syncErrorStatus(err error) int {
	switch {
	case errors.Is(err, sync.ErrTokenNotFound), errors.Is(err, sync.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, sync.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, sync.ErrInsufficientScope):
		return http.StatusForbidden
	case errors.Is(err, sync.ErrAmbiguousRecord):
		return http.StatusConflict
	case errors.Is(err, remote.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
