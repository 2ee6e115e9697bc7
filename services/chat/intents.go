package chat

import (
	"regexp"
	"strings"

	"pharmachat/models"
	"pharmachat/services/resolver"
	"pharmachat/services/retrieval"
)

// Intent classifies one incoming turn. Classification is an ordered rule
// table, first match wins; everything statistical stays downstream.
type Intent int

const (
	IntentUnclassified Intent = iota
	IntentPendingFollowUp
	IntentCartMutation
	IntentProcedural
	IntentDirectLookup
	IntentCheckoutProgress
)

func (i Intent) String() string {
	switch i {
	case IntentPendingFollowUp:
		return "pending_follow_up"
	case IntentCartMutation:
		return "cart_mutation"
	case IntentProcedural:
		return "procedural"
	case IntentDirectLookup:
		return "direct_lookup"
	case IntentCheckoutProgress:
		return "checkout_progress"
	default:
		return "unclassified"
	}
}

type intentRule struct {
	intent  Intent
	matches func(lower string, sess *models.SessionContext) bool
}

// intentRules is evaluated in priority order. A pending sub-question claims
// the turn first unless the turn itself is a brand-new quantified order;
// checkout progression is deliberately last among the structured intents so
// that mid-checkout cart requests still work.
var intentRules = []intentRule{
	{IntentPendingFollowUp, func(lower string, sess *models.SessionContext) bool {
		return sess.Pending != nil && !looksLikeNewOrder(lower)
	}},
	{IntentCartMutation, func(lower string, sess *models.SessionContext) bool {
		// "12 Gulberg Road Lahore" looks like "<qty> <name>" shorthand, but
		// while an address is being collected a bare leading number is far
		// more likely a house number than an order.
		if sess.CheckoutState == models.CheckoutCollectAddress && shorthandOnly(lower) {
			return false
		}
		// "how do I order" carries the order keyword but is a question.
		return isCartMutation(lower) && !isProceduralQuestion(lower)
	}},
	{IntentProcedural, func(lower string, sess *models.SessionContext) bool {
		return isProceduralQuestion(lower)
	}},
	{IntentDirectLookup, func(lower string, sess *models.SessionContext) bool {
		return isDirectLookup(lower)
	}},
	{IntentCheckoutProgress, func(lower string, sess *models.SessionContext) bool {
		return sess.CheckoutState != models.CheckoutNone
	}},
}

// Classify routes one turn. Read-only; downstream handlers mutate the session.
func Classify(text string, sess *models.SessionContext) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range intentRules {
		if rule.matches(lower, sess) {
			return rule.intent
		}
	}
	return IntentUnclassified
}

var mutationVerbs = []string{
	"add", "remove", "delete", "update", "change", "modify", "set",
	"clear", "empty", "order", "buy", "take", "show", "view",
}

var checkoutKeywords = []string{
	"checkout", "check out", "place order", "place my order",
	"complete order", "complete my order", "proceed to order", "finalize",
}

var unitWords = []string{
	"pack", "packs", "box", "boxes", "strip", "strips", "bottle",
	"bottles", "piece", "pieces", "tablet", "tablets", "unit", "units",
}

var (
	qtyShorthandRe = regexp.MustCompile(`^\d+\s+[a-z]`)
	containsDigit  = regexp.MustCompile(`\d`)
)

// isCartMutation requires a mutation verb (or checkout keyword) combined
// with a contextual signal: a number, a unit word, the word cart/order, or a
// "<qty> <name>" shorthand at the start.
func isCartMutation(lower string) bool {
	for _, kw := range checkoutKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if qtyShorthandRe.MatchString(lower) {
		return true
	}

	hasVerb := false
	for _, verb := range mutationVerbs {
		if containsWord(lower, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}

	if containsWord(lower, "cart") || containsWord(lower, "order") {
		return true
	}
	if containsDigit.MatchString(lower) || hasNumberWord(lower) {
		return true
	}
	for _, unit := range unitWords {
		if containsWord(lower, unit) {
			return true
		}
	}
	return false
}

// shorthandOnly reports whether the turn is a cart mutation solely because of
// the "<qty> <name>" shorthand, with no explicit verb or checkout keyword to
// back it up.
func shorthandOnly(lower string) bool {
	if !qtyShorthandRe.MatchString(lower) {
		return false
	}
	for _, kw := range checkoutKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, verb := range mutationVerbs {
		if containsWord(lower, verb) {
			return false
		}
	}
	return true
}

// looksLikeNewOrder decides whether a turn arriving while a sub-question is
// pending is actually a fresh quantified order, which abandons the pending
// slot in favor of cart mutation.
func looksLikeNewOrder(lower string) bool {
	if !isCartMutation(lower) {
		return false
	}
	for _, segment := range resolver.SplitItems(lower) {
		item := resolver.ParseItem(segment)
		if item.HasQuantity && item.Query != "" {
			return true
		}
	}
	return false
}

var proceduralTopics = []string{"order", "pay", "payment", "track", "deliver", "delivery", "return", "refund", "register"}

var (
	// Verb-before-object: "how do I order", "how can I pay".
	proceduralForwardRe = regexp.MustCompile(`how\s+(?:do|can|does|to|would|should)\b`)
	// Object-before-verb: "ordering how does it work".
	proceduralReverseRe = regexp.MustCompile(`\b(?:order|pay|track|deliver|return)\w*\b.*\bhow\b`)
)

// isProceduralQuestion matches "how do I ..." style questions in either
// direction, with a bigram-similarity fallback so typos like "ordder" still
// classify.
func isProceduralQuestion(lower string) bool {
	if proceduralForwardRe.MatchString(lower) || proceduralReverseRe.MatchString(lower) {
		for _, topic := range proceduralTopics {
			if strings.Contains(lower, topic) {
				return true
			}
		}
		// "how do I ..." with a typo in the topic word.
		for _, token := range strings.Fields(lower) {
			for _, topic := range proceduralTopics {
				if retrieval.BigramSimilarity(token, topic) >= 0.6 {
					return true
				}
			}
		}
	}
	return false
}

var lookupRe = regexp.MustCompile(`\b(?:price|cost|rate|stock|availability|available)\b`)

func isDirectLookup(lower string) bool {
	return lookupRe.MatchString(lower)
}

func containsWord(lower, word string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isLetter(lower[start-1])
		afterOK := end == len(lower) || !isLetter(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hasNumberWord(lower string) bool {
	for _, token := range strings.Fields(lower) {
		if _, ok := resolver.NumberWord(token); ok {
			return true
		}
	}
	return false
}
