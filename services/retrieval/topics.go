package retrieval

import "strings"

// topicKeywords maps FAQ topics to the keywords that signal them. Matching is
// fuzzy (character bigrams) so typos like "ordder" or "delievery" still land
// on the right topic.
var topicKeywords = map[string][]string{
	"ordering": {"order", "buy", "purchase", "cart", "checkout", "quotation"},
	"payment":  {"pay", "payment", "invoice", "bill", "credit", "cod"},
	"delivery": {"deliver", "delivery", "ship", "shipping", "track", "tracking", "dispatch"},
	"returns":  {"return", "refund", "exchange", "replace", "expired", "damaged"},
	"account":  {"account", "register", "login", "password", "profile"},
}

// topicOrder fixes the tie-breaking order between equally scored topics.
var topicOrder = []string{"ordering", "payment", "delivery", "returns", "account"}

// fuzzyKeywordThreshold is the bigram similarity at which a token counts as a
// keyword hit.
const fuzzyKeywordThreshold = 0.6

// ClassifyTopic returns the best-matching FAQ topic for the text and a
// confidence in [0,1]. Confidence below the gate threshold means the caller
// should not restrict retrieval by topic.
func ClassifyTopic(text string) (string, float64) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return "", 0
	}

	bestTopic := ""
	bestScore := 0.0
	for _, topic := range topicOrder {
		keywords := topicKeywords[topic]
		score := 0.0
		for _, token := range tokens {
			for _, kw := range keywords {
				var s float64
				if token == kw {
					s = 1.0
				} else if len(token) >= 3 && (strings.HasPrefix(token, kw) || strings.HasPrefix(kw, token)) {
					s = 0.85
				} else {
					s = BigramSimilarity(token, kw)
					if s < fuzzyKeywordThreshold {
						s = 0
					}
				}
				if s > score {
					score = s
				}
			}
		}
		if score > bestScore {
			bestScore = score
			bestTopic = topic
		}
	}
	return bestTopic, bestScore
}

// BigramSimilarity computes the Dice coefficient over character bigrams of
// the two strings. Returns 1 for identical strings, 0 for no shared bigrams.
func BigramSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	counts := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		counts[a[i:i+2]]++
	}
	shared := 0
	for i := 0; i+2 <= len(b); i++ {
		bg := b[i : i+2]
		if counts[bg] > 0 {
			counts[bg]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(a)+len(b)-2)
}
