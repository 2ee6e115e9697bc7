package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pharmachat/models"
	"pharmachat/services/resolver"
)

var (
	cartInspectionRe = regexp.MustCompile(`(?:show|view|see|what|whats|check|display).*\b(?:cart|basket)\b`)
	clearCartRe      = regexp.MustCompile(`\b(?:clear|empty|reset)\b.*\b(?:cart|basket|order)\b`)
	removeRe         = regexp.MustCompile(`^\s*(?:remove|delete|drop)\b`)
	updateRe         = regexp.MustCompile(`^\s*(?:change|update|set|make)\b`)
)

// isCartInspection matches "show cart" style requests, which are answered at
// any point without disturbing checkout or pending state.
func isCartInspection(lower string) bool {
	return cartInspectionRe.MatchString(lower)
}

func isCheckoutRequest(lower string) bool {
	for _, kw := range checkoutKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// handleCartMutation dispatches one cart-family turn: inspection, clearing,
// removal, quantity update, checkout start, or (the default) adding items.
func (s *DefaultChatService) handleCartMutation(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case isCheckoutRequest(lower):
		return s.startCheckout(sess)
	case isCartInspection(lower):
		return message(formatCart(sess.Cart)), nil
	case clearCartRe.MatchString(lower):
		sess.Cart = nil
		sess.Pending = nil
		return message(msgCartCleared), nil
	case removeRe.MatchString(lower):
		return s.removeFromCart(sess, lower), nil
	case updateRe.MatchString(lower):
		return s.updateCartLine(sess, lower)
	default:
		return s.addItems(ctx, sess, text)
	}
}

// addItems splits the utterance on conjunctions and resolves each segment
// independently, so one turn can add several products. All segments are
// resolved before any of them touches the cart, so a resolution failure in a
// later segment cannot leave earlier mutations behind an apology reply.
func (s *DefaultChatService) addItems(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	type resolvedSegment struct {
		item resolver.ParsedItem
		res  *resolver.Resolution
	}
	var segments []resolvedSegment
	for _, segment := range resolver.SplitItems(text) {
		item := resolver.ParseItem(segment)
		if item.Query == "" {
			continue
		}
		res, err := s.Resolver.Resolve(ctx, item.Query)
		if err != nil {
			return nil, err
		}
		segments = append(segments, resolvedSegment{item: item, res: res})
	}

	var lines []string
	for _, seg := range segments {
		item, res := seg.item, seg.res

		switch res.Kind {
		case resolver.NotFound:
			lines = append(lines, msgNotFound(item.Query))
		case resolver.Ambiguous:
			if sess.Pending == nil {
				sess.Pending = &models.PendingOrder{
					Kind:       models.PendingAmbiguity,
					Query:      item.Query,
					Quantity:   item.Quantity,
					Candidates: res.Candidates,
				}
				lines = append(lines, msgAmbiguity(item.Query, res.Candidates))
			} else {
				lines = append(lines, fmt.Sprintf("Several products match %q — please ask me about it again once we've sorted the current question.", item.Query))
			}
		case resolver.ResolvedOne:
			lines = append(lines, s.applyResolved(sess, *res.Product, item.Quantity, item.HasQuantity))
		}
	}

	if len(lines) == 0 {
		return message("What would you like to add? For example \"add 5 Panadol\"."), nil
	}
	return message(strings.Join(lines, "\n")), nil
}

// applyResolved applies the stock and quantity policies for a single
// resolved product and returns the reply line.
func (s *DefaultChatService) applyResolved(sess *models.SessionContext, cand models.CatalogCandidate, qty int, hasQty bool) string {
	if !cand.InStock() {
		return msgOutOfStock(cand.Name)
	}

	if !hasQty || qty <= 0 {
		if sess.Pending == nil {
			sess.Pending = &models.PendingOrder{
				Kind:    models.PendingAwaitingQuantity,
				Query:   cand.Name,
				Product: &cand,
			}
		}
		return msgAwaitingQuantity(cand.Name)
	}

	existing := existingQuantity(sess, cand)
	if cand.Stock < existing+qty {
		available := cand.Stock - existing
		if available <= 0 {
			return fmt.Sprintf("You already have all %d available of %s in your cart.", cand.Stock, cand.Name)
		}
		if sess.Pending == nil {
			sess.Pending = &models.PendingOrder{
				Kind:      models.PendingStockNegotiation,
				Product:   &cand,
				Requested: qty,
				Available: available,
			}
		}
		return msgStockNegotiation(cand.Name, qty, available)
	}

	addToCart(sess, cand, qty)
	return msgAdded(models.CartItem{
		ProductName: cand.Name, PackSize: cand.PackSize, Quantity: qty, UnitPrice: cand.Price,
	})
}

// addToCart merges into an existing line when the product is already in the
// cart, otherwise appends a new line.
func addToCart(sess *models.SessionContext, cand models.CatalogCandidate, qty int) models.CartItem {
	newItem := models.CartItem{
		ProductID:   cand.ID,
		ProductName: cand.Name,
		Quantity:    qty,
		UnitPrice:   cand.Price,
		Company:     cand.Company,
		PackSize:    cand.PackSize,
	}
	for i := range sess.Cart {
		if models.SameLine(sess.Cart[i], newItem) {
			sess.Cart[i].Quantity += qty
			sess.Cart[i].UnitPrice = cand.Price
			return sess.Cart[i]
		}
	}
	sess.Cart = append(sess.Cart, newItem)
	return newItem
}

func existingQuantity(sess *models.SessionContext, cand models.CatalogCandidate) int {
	key := models.CartItem{ProductID: cand.ID, ProductName: cand.Name, PackSize: cand.PackSize}
	for _, line := range sess.Cart {
		if models.SameLine(line, key) {
			return line.Quantity
		}
	}
	return 0
}

var cartStopwords = map[string]bool{
	"remove": true, "delete": true, "drop": true, "change": true,
	"update": true, "set": true, "make": true, "to": true, "from": true,
	"my": true, "the": true, "cart": true, "basket": true, "order": true,
	"please": true, "quantity": true, "qty": true, "of": true,
}

// removeFromCart drops the first cart line matching the fragment.
func (s *DefaultChatService) removeFromCart(sess *models.SessionContext, lower string) *models.ChatResponse {
	fragment := stripStopwords(lower)
	if fragment == "" {
		return message("Which item should I remove?")
	}
	idx := findCartLine(sess, fragment)
	if idx < 0 {
		return message(fmt.Sprintf("I couldn't find %q in your cart.", fragment))
	}
	removed := sess.Cart[idx]
	sess.Cart = append(sess.Cart[:idx], sess.Cart[idx+1:]...)
	return message(fmt.Sprintf("Removed %s from your cart.", removed.ProductName))
}

// updateCartLine sets a new quantity on an existing line, bounded by live stock.
func (s *DefaultChatService) updateCartLine(sess *models.SessionContext, lower string) (*models.ChatResponse, error) {
	item := resolver.ParseItem(stripStopwords(lower))
	if !item.HasQuantity {
		return message("What quantity should I set? For example \"change Panadol to 5\"."), nil
	}
	if item.Query == "" {
		return message("Which item should I update?"), nil
	}

	idx := findCartLine(sess, item.Query)
	if idx < 0 {
		return message(fmt.Sprintf("I couldn't find %q in your cart.", item.Query)), nil
	}

	line := &sess.Cart[idx]
	live, err := s.Catalog.GetLive([]string{line.ProductID})
	if err != nil {
		return nil, err
	}
	if len(live) > 0 && live[0].Stock < item.Quantity {
		return message(fmt.Sprintf("We only have %d of %s in stock, so I've left the quantity at %d.",
			live[0].Stock, line.ProductName, line.Quantity)), nil
	}

	line.Quantity = item.Quantity
	return message(fmt.Sprintf("Updated %s to quantity %d.", line.ProductName, line.Quantity)), nil
}

// findCartLine matches a fragment against cart line names in either
// containment direction.
func findCartLine(sess *models.SessionContext, fragment string) int {
	fragNorm := models.NormalizeName(fragment)
	if fragNorm == "" {
		return -1
	}
	for i, line := range sess.Cart {
		nameNorm := models.NormalizeName(line.ProductName)
		if strings.Contains(nameNorm, fragNorm) || strings.Contains(fragNorm, nameNorm) {
			return i
		}
	}
	return -1
}

func stripStopwords(lower string) string {
	var kept []string
	for _, token := range strings.Fields(lower) {
		if !cartStopwords[token] {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}
