package catalogRepo

import "pharmachat/models"

// CatalogRepository defines methods for product catalog access.
type CatalogRepository interface {
	// GetByID retrieves a product by its unique ID.
	GetByID(id string) (*models.Product, error)
	// Search finds products whose name contains the query (case-insensitive).
	Search(query string) ([]models.CatalogCandidate, error)
	// All retrieves a lightweight projection of every product, used by the
	// edit-distance resolution tier.
	All() ([]models.CatalogCandidate, error)
	// GetLive retrieves current price, stock and status for the given ids.
	GetLive(ids []string) ([]models.LiveProductInfo, error)
	// GetAllFull retrieves full product records including embeddings.
	GetAllFull() ([]models.Product, error)
	// UpdateEmbedding stores a recomputed embedding vector for a product.
	UpdateEmbedding(id string, vector []float32) error
}
