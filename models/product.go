package models

import "time"

// Product is a catalog record as stored in MongoDB. The embedding vector is
// maintained by the background rebuild worker and never serialized to clients.
type Product struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Company     string    `bson:"company" json:"company"`    // manufacturer
	PackSize    string    `bson:"pack_size" json:"packSize"` // e.g. "10s", "60ml"
	Category    string    `bson:"category" json:"category"`  // e.g. "medicine", "cosmetics"
	Description string    `bson:"description" json:"description,omitempty"`
	Price       float64   `bson:"price" json:"price"`
	Stock       int       `bson:"stock" json:"stock"`
	Status      string    `bson:"status" json:"status"` // "active", "out_of_stock", "discontinued"
	Embedding   []float32 `bson:"embedding,omitempty" json:"-"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// CatalogCandidate is a turn-scoped projection of a product returned by
// catalog search or semantic retrieval. It is never persisted.
type CatalogCandidate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	PackSize   string  `json:"packSize"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	Status     string  `json:"status"`
	Similarity float64 `json:"similarity,omitempty"`
}

// LiveProductInfo carries up-to-the-second price and stock used to hydrate
// retrieval results before they are shown or added to a cart.
type LiveProductInfo struct {
	ID     string  `bson:"id" json:"id"`
	Price  float64 `bson:"price" json:"price"`
	Stock  int     `bson:"stock" json:"stock"`
	Status string  `bson:"status" json:"status"`
}

// InStock reports whether the product can be sold at all.
func (c CatalogCandidate) InStock() bool {
	return c.Stock > 0 && c.Status != "out_of_stock" && c.Status != "discontinued"
}
