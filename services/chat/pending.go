package chat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pharmachat/models"
	"pharmachat/services/resolver"
)

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
}

var affirmativeWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "ok": true, "okay": true,
	"sure": true, "fine": true, "confirm": true, "confirmed": true,
	"accept": true, "proceed": true, "go": true, "y": true,
}

var negativeWords = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "dont": true,
	"don't": true, "decline": true, "n": true, "stop": true,
}

func isAffirmative(lower string) bool {
	for _, token := range strings.Fields(lower) {
		if affirmativeWords[strings.Trim(token, ".,!?")] {
			return true
		}
	}
	return strings.Contains(lower, "this one") || strings.Contains(lower, "go ahead")
}

func isNegative(lower string) bool {
	for _, token := range strings.Fields(lower) {
		if negativeWords[strings.Trim(token, ".,!?")] {
			return true
		}
	}
	return false
}

// handlePendingFollowUp resolves the single-slot pending sub-question left by
// a previous turn. The slot is cleared on every resolution path.
func (s *DefaultChatService) handlePendingFollowUp(ctx context.Context, sess *models.SessionContext, text string) (*models.ChatResponse, error) {
	pending := sess.Pending
	if pending == nil {
		return s.handleOpenQuestion(ctx, sess, text)
	}
	lower := strings.ToLower(strings.TrimSpace(text))

	switch pending.Kind {
	case models.PendingAmbiguity:
		return s.resolveAmbiguity(sess, pending, lower), nil
	case models.PendingStockNegotiation:
		return s.resolveStockNegotiation(sess, pending, lower), nil
	case models.PendingAwaitingQuantity:
		return s.resolveAwaitingQuantity(sess, pending, lower), nil
	default:
		sess.Pending = nil
		return s.handleOpenQuestion(ctx, sess, text)
	}
}

// resolveAmbiguity picks one of the offered candidates by number, ordinal
// word, or name. Number selection takes priority over a name match.
func (s *DefaultChatService) resolveAmbiguity(sess *models.SessionContext, pending *models.PendingOrder, lower string) *models.ChatResponse {
	idx := selectionIndex(lower, len(pending.Candidates))
	if idx < 0 {
		idx = nameSelectionIndex(lower, pending.Candidates)
	}
	if idx < 0 {
		if isNegative(lower) {
			sess.Pending = nil
			return message("No problem, I've dropped that. What else can I help you with?")
		}
		// Re-prompt without dropping the slot.
		return message(msgAmbiguity(pending.Query, pending.Candidates))
	}

	chosen := pending.Candidates[idx]
	qty := pending.Quantity
	sess.Pending = nil
	return message(s.applyResolved(sess, chosen, qty, qty > 0))
}

// resolveStockNegotiation adds the offered reduced quantity on an explicit
// yes, and leaves the cart untouched otherwise.
func (s *DefaultChatService) resolveStockNegotiation(sess *models.SessionContext, pending *models.PendingOrder, lower string) *models.ChatResponse {
	if isAffirmative(lower) {
		sess.Pending = nil
		addToCart(sess, *pending.Product, pending.Available)
		return message(fmt.Sprintf("Done — added %d x %s to your cart.", pending.Available, pending.Product.Name))
	}
	if isNegative(lower) {
		sess.Pending = nil
		return message(fmt.Sprintf("Okay, I've left %s out of your cart.", pending.Product.Name))
	}
	return message(msgStockNegotiation(pending.Product.Name, pending.Requested, pending.Available))
}

var bareNumberRe = regexp.MustCompile(`^\d+$`)

// resolveAwaitingQuantity reads the missing quantity for an already-resolved
// product.
func (s *DefaultChatService) resolveAwaitingQuantity(sess *models.SessionContext, pending *models.PendingOrder, lower string) *models.ChatResponse {
	if isNegative(lower) {
		sess.Pending = nil
		return message(fmt.Sprintf("Okay, I've left %s out of your cart.", pending.Product.Name))
	}

	item := resolver.ParseItem(lower)
	if !item.HasQuantity {
		return message(msgAwaitingQuantity(pending.Product.Name))
	}

	product := *pending.Product
	sess.Pending = nil
	return message(s.applyResolved(sess, product, item.Quantity, true))
}

// selectionIndex parses a digit or ordinal-word selection into a zero-based
// index, or -1.
func selectionIndex(lower string, count int) int {
	for _, token := range strings.Fields(lower) {
		token = strings.Trim(token, ".,!?")
		n := 0
		if bareNumberRe.MatchString(token) {
			n, _ = strconv.Atoi(token)
		} else if o, ok := ordinalWords[token]; ok {
			n = o
		} else if w, ok := resolver.NumberWord(token); ok {
			n = w
		}
		if n >= 1 && n <= count {
			return n - 1
		}
	}
	return -1
}

// nameSelectionIndex matches the reply against candidate names; the match
// must be unique to count.
func nameSelectionIndex(lower string, candidates []models.CatalogCandidate) int {
	found := -1
	for i, c := range candidates {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}
