// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"fmt"
	"strings"

	"pharmachat/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = "You are the ordering assistant of a pharmaceutical distributor. " +
	"Answer briefly and helpfully. Only discuss products, orders and delivery. " +
	"If you do not know something, say so instead of inventing it."

// GeminiClient wraps a single Gemini client for both text generation and
// embeddings.
type GeminiClient struct {
	genModel *genai.GenerativeModel
	embModel *genai.EmbeddingModel
}

// NewGeminiClient creates a Gemini client for the configured generation and
// embedding models.
func NewGeminiClient(ctx context.Context, apiKey, genModelName, embModelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		genModel: client.GenerativeModel(genModelName),
		embModel: client.EmbeddingModel(embModelName),
	}, nil
}

// GenerateReply produces a fallback answer, giving the model the recent
// conversation as context.
func (g *GeminiClient) GenerateReply(ctx context.Context, history []models.ChatMessage, userText string) (string, error) {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nConversation so far:\n")
	for _, msg := range history {
		sb.WriteString(msg.Role)
		sb.WriteString(": ")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("user: ")
	sb.WriteString(userText)

	resp, err := g.genModel.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			out.WriteString(string(textPart))
		}
	}
	return out.String(), nil
}

// Embed returns the raw embedding vector for the given text.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.embModel.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed error: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}
	return resp.Embedding.Values, nil
}
