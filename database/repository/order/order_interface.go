package orderRepo

import "pharmachat/models"

// OrderRepository defines methods for submitted order access.
type OrderRepository interface {
	// Create inserts a new order record.
	Create(order *models.Order) error
	// GetByID retrieves an order by its unique ID.
	GetByID(id string) (*models.Order, error)
	// GetBySession retrieves all orders submitted from a session.
	GetBySession(sessionID string) ([]models.Order, error)
}
