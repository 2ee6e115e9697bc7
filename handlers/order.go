package handlers

import (
	"net/http"

	orderRepo "pharmachat/database/repository/order"
	"pharmachat/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes read access to submitted orders.
type OrderHandler struct {
	Repo orderRepo.OrderRepository
}

func NewOrderHandler(repo orderRepo.OrderRepository) *OrderHandler {
	return &OrderHandler{Repo: repo}
}

// GetByIDHandler returns one submitted order.
func (h *OrderHandler) GetByIDHandler(c *gin.Context) {
	id := c.Param("id")
	order, err := h.Repo.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Order not found", id)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetBySessionHandler lists the orders submitted from one session.
func (h *OrderHandler) GetBySessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionId")
	orders, err := h.Repo.GetBySession(sessionID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Could not list orders", "Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
