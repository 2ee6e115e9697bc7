package faqRepo

import "pharmachat/models"

// FAQRepository defines methods for the procedural question corpus.
type FAQRepository interface {
	// GetAll retrieves every FAQ entry including embeddings.
	GetAll() ([]models.FAQEntry, error)
	// GetByID retrieves a single FAQ entry.
	GetByID(id string) (*models.FAQEntry, error)
	// UpdateEmbedding stores a recomputed embedding vector for an entry.
	UpdateEmbedding(id string, vector []float32) error
}
