package retrieval

import (
	"sort"
	"strings"

	"pharmachat/models"
)

// symptomKeywords signal that a query is about a medical complaint, in which
// case non-medicine candidates (cosmetics, hygiene) are penalized.
var symptomKeywords = []string{
	"pain", "headache", "fever", "cough", "cold", "flu", "allergy",
	"infection", "ache", "nausea", "vomiting", "diarrhea", "rash",
	"tablet", "syrup", "capsule", "injection", "antibiotic", "medicine",
}

// nonMedicineCategories are catalog categories that should not outrank
// medicines for a symptom query.
var nonMedicineCategories = map[string]bool{
	"cosmetics": true,
	"hygiene":   true,
	"baby_care": true,
	"devices":   true,
}

// Reranker rescales an initial candidate list with lexical heuristics to
// produce a short, high-precision top-K. This is a cheap proxy for relevance,
// not a learned ranker.
type Reranker struct {
	knownCompanies map[string]bool
}

// NewReranker creates a reranker with the given trusted manufacturer names.
func NewReranker(companies []string) *Reranker {
	known := make(map[string]bool, len(companies))
	for _, c := range companies {
		known[strings.ToLower(c)] = true
	}
	return &Reranker{knownCompanies: known}
}

// Rerank scores candidates against the query and returns the top k. It is a
// pass-through when the list already fits within k.
func (r *Reranker) Rerank(query string, candidates []models.CatalogCandidate, k int) []models.CatalogCandidate {
	if len(candidates) <= k {
		return candidates
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryTokens := strings.Fields(queryLower)
	medical := r.isMedicalQuery(queryLower)

	type scored struct {
		cand  models.CatalogCandidate
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, cand := range candidates {
		nameLower := strings.ToLower(cand.Name)
		score := cand.Similarity

		if strings.Contains(nameLower, queryLower) {
			score += 0.3
		}
		if len(queryTokens) > 0 {
			score += 0.2 * tokenMatchFraction(queryTokens, nameLower)
		}
		if strings.HasPrefix(queryLower, nameLower) {
			score += 0.15
		}
		if medical && nonMedicineCategories[strings.ToLower(cand.Category)] {
			score -= 0.2
		}
		if r.knownCompanies[strings.ToLower(cand.Company)] {
			score += 0.05
		}
		ranked = append(ranked, scored{cand: cand, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]models.CatalogCandidate, 0, k)
	for i := 0; i < k && i < len(ranked); i++ {
		out = append(out, ranked[i].cand)
	}
	return out
}

func (r *Reranker) isMedicalQuery(queryLower string) bool {
	for _, kw := range symptomKeywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

// tokenMatchFraction is the fraction of query tokens found among candidate
// name tokens.
func tokenMatchFraction(queryTokens []string, nameLower string) float64 {
	nameTokens := make(map[string]bool)
	for _, t := range strings.Fields(nameLower) {
		nameTokens[t] = true
	}
	matched := 0
	for _, t := range queryTokens {
		if nameTokens[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
