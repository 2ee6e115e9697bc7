// File: services/intelligence/interface.go
package ai

import (
	"context"

	"pharmachat/models"
)

// Embedder turns text into a fixed-length numeric vector. Implementations
// return raw (unnormalized) vectors; callers normalize as needed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a free-text reply and is invoked only as a last resort
// for turns no deterministic handler claimed.
type Generator interface {
	GenerateReply(ctx context.Context, history []models.ChatMessage, userText string) (string, error)
}
