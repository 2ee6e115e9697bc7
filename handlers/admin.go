package handlers

import (
	"net/http"

	"pharmachat/cron"
	"pharmachat/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	Queue *asynq.Client
}

func NewAdminHandler(queue *asynq.Client) *AdminHandler {
	return &AdminHandler{Queue: queue}
}

// RebuildEmbeddingsHandler enqueues a background rebuild of the catalog and
// FAQ embedding index.
func (h *AdminHandler) RebuildEmbeddingsHandler(c *gin.Context) {
	if err := cron.EnqueueRebuild(h.Queue); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Could not enqueue rebuild", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
