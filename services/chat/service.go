package chat

import (
	"context"
	"fmt"
	"strings"

	"pharmachat/models"
	"pharmachat/services/resolver"
	"pharmachat/services/retrieval"
	"pharmachat/utils"

	"go.uber.org/zap"
)

// ProcessTurn handles one conversational turn synchronously: load the
// session context, classify and dispatch, then write the context back
// wholesale. Handler failures never leave the saved context inconsistent
// with what the user was shown.
func (s *DefaultChatService) ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	sess, err := s.Sessions.Load(ctx, req.SessionID)
	if err != nil {
		return nil, NewUpstreamError(fmt.Sprintf("load session %s: %v", req.SessionID, err))
	}
	sess.SessionID = req.SessionID
	sess.AppendMessage("user", req.Text)

	resp := s.dispatch(ctx, sess, req.Text)
	sess.AppendMessage("assistant", resp.Text)

	if err := s.Sessions.Save(ctx, req.SessionID, sess); err != nil {
		return nil, NewUpstreamError(fmt.Sprintf("save session %s: %v", req.SessionID, err))
	}
	return resp, nil
}

// dispatch routes a classified turn to its handler. Handler errors are
// upstream failures (embedding, database, generation): the user gets an
// apology and the session keeps whatever consistent state the handler left.
func (s *DefaultChatService) dispatch(ctx context.Context, sess *models.SessionContext, text string) *models.ChatResponse {
	logger := utils.GetLogger()
	intent := Classify(text, sess)

	var resp *models.ChatResponse
	var err error
	switch intent {
	case IntentPendingFollowUp:
		resp, err = s.handlePendingFollowUp(ctx, sess, text)
	case IntentCartMutation:
		resp, err = s.handleCartMutation(ctx, sess, text)
	case IntentProcedural:
		resp, err = s.handleProcedural(ctx, sess, text)
	case IntentDirectLookup:
		resp, err = s.handleDirectLookup(ctx, sess, text)
	case IntentCheckoutProgress:
		resp, err = s.handleCheckout(ctx, sess, text)
	default:
		resp, err = s.handleOpenQuestion(ctx, sess, text)
	}

	if err != nil {
		logger.Error("turn handler failed",
			zap.String("sessionId", sess.SessionID),
			zap.String("intent", intent.String()),
			zap.Error(err))
		return message(msgApology)
	}
	return resp
}

// handleProcedural answers "how do I ..." questions from the FAQ corpus,
// gated by the detected topic when the classification is confident.
func (s *DefaultChatService) handleProcedural(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	topic, confidence := retrieval.ClassifyTopic(text)
	var filter *retrieval.TopicFilter
	if topic != "" {
		filter = &retrieval.TopicFilter{Topics: []string{topic}, Confidence: confidence}
	}

	best, err := s.Engine.BestMatch(ctx, text, retrieval.KindFAQ, filter)
	if err != nil {
		return nil, err
	}
	if best != nil {
		return message(best.Answer), nil
	}
	return s.generateFallback(ctx, sess, text)
}

// handleDirectLookup answers price/stock questions with a hydrated catalog
// lookup, bypassing retrieval when the catalog resolves the product.
func (s *DefaultChatService) handleDirectLookup(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	fragment := lookupFragment(text)
	if fragment == "" {
		return message("Which product would you like the price or stock for?"), nil
	}

	res, err := s.Resolver.Resolve(ctx, fragment)
	if err != nil {
		return nil, err
	}
	switch res.Kind {
	case resolver.ResolvedOne:
		c := res.Product
		if !c.InStock() {
			return message(fmt.Sprintf("%s (%s) by %s is currently out of stock.", c.Name, c.PackSize, c.Company)), nil
		}
		return message(fmt.Sprintf("%s (%s) by %s is Rs. %.2f, with %d in stock.",
			c.Name, c.PackSize, c.Company, c.Price, c.Stock)), nil
	case resolver.Ambiguous:
		return message(msgAmbiguityLookup(fragment, res.Candidates)), nil
	default:
		return message(msgNotFound(fragment)), nil
	}
}

// handleOpenQuestion is the retrieval fall-through: FAQ first, then a
// re-ranked product suggestion, and only then the generative fallback.
func (s *DefaultChatService) handleOpenQuestion(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	topic, confidence := retrieval.ClassifyTopic(text)
	var filter *retrieval.TopicFilter
	if topic != "" {
		filter = &retrieval.TopicFilter{Topics: []string{topic}, Confidence: confidence}
	}

	best, err := s.Engine.BestMatch(ctx, text, retrieval.KindFAQ, filter)
	if err == nil && best != nil {
		return message(best.Answer), nil
	}
	if err != nil {
		utils.GetLogger().Warn("faq retrieval failed", zap.Error(err))
	}

	if resp := s.suggestProducts(ctx, text); resp != nil {
		return resp, nil
	}
	return s.generateFallback(ctx, sess, text)
}

// minSuggestionScore keeps weak product matches from hijacking the fallback.
const minSuggestionScore = 0.4

// suggestProducts retrieves catalog candidates for an open product question
// and re-ranks them into a short suggestion list. Returns nil when nothing
// clears the similarity floor.
func (s *DefaultChatService) suggestProducts(ctx context.Context, text string) *models.ChatResponse {
	matches, err := s.Engine.Search(ctx, text, 10, retrieval.KindProduct, nil)
	if err != nil {
		utils.GetLogger().Warn("product retrieval failed", zap.Error(err))
		return nil
	}

	var candidates []models.CatalogCandidate
	var ids []string
	for _, m := range matches {
		if m.Score < minSuggestionScore {
			continue
		}
		cand := m.Candidate
		cand.Similarity = m.Score
		candidates = append(candidates, cand)
		ids = append(ids, cand.ID)
	}
	if len(candidates) == 0 {
		return nil
	}

	top := s.Reranker.Rerank(text, candidates, 3)

	// Hydrate with live price and stock before showing anything.
	live, err := s.Catalog.GetLive(ids)
	if err == nil {
		byID := make(map[string]models.LiveProductInfo, len(live))
		for _, info := range live {
			byID[info.ID] = info
		}
		for i := range top {
			if info, ok := byID[top[i].ID]; ok {
				top[i].Price = info.Price
				top[i].Stock = info.Stock
				top[i].Status = info.Status
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("These products might be what you're looking for:\n")
	for i, c := range top {
		fmt.Fprintf(&sb, "%d. %s (%s) — %s, Rs. %.2f\n", i+1, c.Name, c.PackSize, c.Company, c.Price)
	}
	sb.WriteString("Say for example \"add 2 " + top[0].Name + "\" to order.")
	return message(sb.String())
}

// generateFallback is the last resort for turns no deterministic handler
// claimed.
func (s *DefaultChatService) generateFallback(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	if s.Generator == nil {
		return message("I can help you order products, answer price and stock questions, and walk you through checkout. What would you like to do?"), nil
	}
	reply, err := s.Generator.GenerateReply(ctx, sess.History, text)
	if err != nil {
		utils.GetLogger().Warn("generative fallback failed", zap.Error(err))
		return message(msgApology), nil
	}
	return message(reply), nil
}

var lookupStopwords = map[string]bool{
	"price": true, "cost": true, "rate": true, "stock": true,
	"availability": true, "available": true, "of": true, "for": true,
	"the": true, "what": true, "whats": true, "what's": true, "is": true,
	"how": true, "much": true, "many": true, "do": true, "you": true,
	"have": true, "tell": true, "me": true, "please": true, "in": true,
	"a": true, "an": true, "check": true, "show": true,
}

// lookupFragment strips question scaffolding from a price/stock query,
// leaving the product fragment.
func lookupFragment(text string) string {
	lower := strings.ToLower(text)
	lower = strings.Trim(lower, "?!. ")
	var kept []string
	for _, token := range strings.Fields(lower) {
		if !lookupStopwords[strings.Trim(token, "?!.,")] {
			kept = append(kept, strings.Trim(token, "?!.,"))
		}
	}
	return strings.Join(kept, " ")
}

func msgAmbiguityLookup(query string, candidates []models.CatalogCandidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A few products match %q:\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s (%s) — %s, Rs. %.2f, %d in stock\n",
			i+1, c.Name, c.PackSize, c.Company, c.Price, c.Stock)
	}
	sb.WriteString("Ask again with the full name for an exact answer.")
	return sb.String()
}
