package chat

import (
	"context"

	catalogRepo "pharmachat/database/repository/catalog"
	orderRepo "pharmachat/database/repository/order"
	"pharmachat/models"
	"pharmachat/services/resolver"
	"pharmachat/services/retrieval"

	ai "pharmachat/services/intelligence"
)

// ChatService processes one conversational turn to completion.
type ChatService interface {
	ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// DefaultChatService implements ChatService. One turn is handled
// synchronously: load the session context, route the intent, dispatch, and
// write the context back.
type DefaultChatService struct {
	Sessions  SessionStore
	Catalog   catalogRepo.CatalogRepository
	Orders    orderRepo.OrderRepository
	Resolver  *resolver.Resolver
	Engine    *retrieval.Engine
	Reranker  *retrieval.Reranker
	Generator ai.Generator
}
