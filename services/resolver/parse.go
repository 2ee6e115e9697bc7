package resolver

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedItem is one quantity+name fragment extracted from free text.
type ParsedItem struct {
	Query       string
	Quantity    int
	HasQuantity bool
}

// numberWords maps spelled-out quantities to integers.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "dozen": 12, "fifteen": 15, "twenty": 20,
}

// unitSuffixes are dose/strength units. A number carrying one of these is a
// strength (part of the product name), never a quantity.
var unitSuffixes = []string{"mg", "ml", "mcg", "gm", "g", "%", "iu"}

// leadInWords are filler tokens stripped from the front of a fragment before
// resolution ("add", "i want 5 panadol", ...).
var leadInWords = map[string]bool{
	"add": true, "order": true, "buy": true, "get": true, "give": true,
	"i": true, "want": true, "need": true, "me": true, "please": true,
	"some": true, "the": true, "a": true, "an": true, "of": true,
	"to": true, "my": true, "cart": true,
}

var (
	conjunctionRe = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b|\bplus\b|\bwith\b)\s*`)
	digitsRe      = regexp.MustCompile(`^(\d+)([a-z%]*)$`)
)

// SplitItems splits one utterance into independent item segments on
// conjunctions, so "5 Panadol and 10 Brufen" resolves as two items.
func SplitItems(text string) []string {
	parts := conjunctionRe.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// ParseItem extracts a quantity and product name fragment from one segment.
// A number immediately followed by a unit suffix (500mg, 60 ml) is a strength
// and is kept inside the name fragment.
func ParseItem(segment string) ParsedItem {
	tokens := strings.Fields(segment)
	var nameTokens []string
	quantity := 0
	hasQuantity := false

	for i := 0; i < len(tokens); i++ {
		token := strings.ToLower(tokens[i])

		if !hasQuantity && len(nameTokens) == 0 && leadInWords[token] {
			continue
		}

		if m := digitsRe.FindStringSubmatch(token); m != nil {
			if m[2] != "" {
				// Attached suffix: "500mg" is a strength.
				nameTokens = append(nameTokens, tokens[i])
				continue
			}
			if i+1 < len(tokens) && isUnitSuffix(tokens[i+1]) {
				// Detached suffix: "500 mg". Keep both tokens in the name.
				nameTokens = append(nameTokens, tokens[i], tokens[i+1])
				i++
				continue
			}
			if !hasQuantity {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					quantity = n
					hasQuantity = true
					continue
				}
			}
			nameTokens = append(nameTokens, tokens[i])
			continue
		}

		if n, ok := numberWords[token]; ok && !hasQuantity {
			if i+1 < len(tokens) && isUnitSuffix(tokens[i+1]) {
				nameTokens = append(nameTokens, tokens[i], tokens[i+1])
				i++
				continue
			}
			quantity = n
			hasQuantity = true
			continue
		}

		nameTokens = append(nameTokens, tokens[i])
	}

	return ParsedItem{
		Query:       strings.TrimSpace(strings.Join(nameTokens, " ")),
		Quantity:    quantity,
		HasQuantity: hasQuantity,
	}
}

// NumberWord reports whether a token is a spelled-out quantity.
func NumberWord(token string) (int, bool) {
	n, ok := numberWords[strings.ToLower(token)]
	return n, ok
}

func isUnitSuffix(token string) bool {
	token = strings.ToLower(strings.Trim(token, ".,"))
	for _, u := range unitSuffixes {
		if token == u {
			return true
		}
	}
	return false
}
