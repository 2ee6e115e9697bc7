package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	catalogRepo "pharmachat/database/repository/catalog"
	"pharmachat/models"
	"pharmachat/services/retrieval"
)

// Resolution kinds.
const (
	ResolvedOne = "resolved"
	Ambiguous   = "ambiguous"
	NotFound    = "not_found"
)

// Resolution is the outcome of mapping a free-text fragment to the catalog.
type Resolution struct {
	Kind       string
	Query      string
	Product    *models.CatalogCandidate  // set when Kind is ResolvedOne
	Candidates []models.CatalogCandidate // set when Kind is Ambiguous, at most MaxAmbiguityCandidates
}

// MaxAmbiguityCandidates bounds how many options are surfaced to the user.
const MaxAmbiguityCandidates = 5

// minSemanticScore is the similarity floor for the semantic fallback tier.
const minSemanticScore = 0.4

// Resolver maps quantity+name fragments to catalog products through three
// tiers: substring match, edit distance, then semantic vector search. The
// first tier that yields candidates wins.
type Resolver struct {
	Catalog catalogRepo.CatalogRepository
	Engine  *retrieval.Engine
}

// NewResolver creates a resolver over the given catalog and vector engine.
func NewResolver(catalog catalogRepo.CatalogRepository, engine *retrieval.Engine) *Resolver {
	return &Resolver{Catalog: catalog, Engine: engine}
}

// Resolve maps one name fragment to a catalog product. Candidates that are
// duplicates of the same product (same normalized name and pack size, e.g.
// different batches) are collapsed; genuinely distinct products produce an
// ambiguous resolution instead of a guess.
func (r *Resolver) Resolve(ctx context.Context, fragment string) (*Resolution, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return &Resolution{Kind: NotFound, Query: fragment}, nil
	}

	candidates, err := r.substringTier(fragment)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = r.editDistanceTier(fragment)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		candidates, err = r.semanticTier(ctx, fragment)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return &Resolution{Kind: NotFound, Query: fragment}, nil
	}

	groups := groupCandidates(candidates)
	if len(groups) == 1 {
		best := groups[0][0]
		return &Resolution{Kind: ResolvedOne, Query: fragment, Product: &best}, nil
	}

	// One representative per distinct group, capped.
	options := make([]models.CatalogCandidate, 0, MaxAmbiguityCandidates)
	for _, group := range groups {
		options = append(options, group[0])
		if len(options) == MaxAmbiguityCandidates {
			break
		}
	}
	return &Resolution{Kind: Ambiguous, Query: fragment, Candidates: options}, nil
}

// substringTier matches the fragment against catalog names in either
// containment direction, case-insensitively.
func (r *Resolver) substringTier(fragment string) ([]models.CatalogCandidate, error) {
	candidates, err := r.Catalog.Search(fragment)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = true
	}

	// Reverse direction: the fragment may contain the full product name
	// ("panadol extra for my headache" contains "Panadol Extra").
	all, err := r.Catalog.All()
	if err != nil {
		return nil, fmt.Errorf("catalog listing failed: %w", err)
	}
	fragLower := strings.ToLower(fragment)
	for _, c := range all {
		if seen[c.ID] {
			continue
		}
		if name := strings.ToLower(c.Name); name != "" && strings.Contains(fragLower, name) {
			candidates = append(candidates, c)
			seen[c.ID] = true
		}
	}
	return candidates, nil
}

// editDistanceTier tolerates typos with an adaptive Levenshtein threshold.
func (r *Resolver) editDistanceTier(fragment string) ([]models.CatalogCandidate, error) {
	all, err := r.Catalog.All()
	if err != nil {
		return nil, fmt.Errorf("catalog listing failed: %w", err)
	}

	fragLower := strings.ToLower(fragment)
	threshold := editThreshold(fragLower)

	type scored struct {
		cand models.CatalogCandidate
		dist int
	}
	var matched []scored
	for _, c := range all {
		nameLower := strings.ToLower(c.Name)
		dist := levenshteinDistance(fragLower, nameLower)
		for _, token := range strings.Fields(nameLower) {
			if d := levenshteinDistance(fragLower, token); d < dist {
				dist = d
			}
		}
		if dist <= threshold {
			matched = append(matched, scored{cand: c, dist: dist})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].dist < matched[j].dist })

	candidates := make([]models.CatalogCandidate, 0, len(matched))
	for _, m := range matched {
		candidates = append(candidates, m.cand)
	}
	return candidates, nil
}

// semanticTier embeds the fragment and retrieves the nearest catalog vectors,
// hydrated with live price and stock since the vector index may be stale.
func (r *Resolver) semanticTier(ctx context.Context, fragment string) ([]models.CatalogCandidate, error) {
	matches, err := r.Engine.Search(ctx, fragment, MaxAmbiguityCandidates, retrieval.KindProduct, nil)
	if err != nil {
		return nil, fmt.Errorf("semantic search failed: %w", err)
	}

	var candidates []models.CatalogCandidate
	var ids []string
	for _, m := range matches {
		if m.Score < minSemanticScore {
			continue
		}
		cand := m.Candidate
		cand.Similarity = m.Score
		candidates = append(candidates, cand)
		ids = append(ids, cand.ID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	live, err := r.Catalog.GetLive(ids)
	if err != nil {
		return nil, fmt.Errorf("live hydration failed: %w", err)
	}
	byID := make(map[string]models.LiveProductInfo, len(live))
	for _, info := range live {
		byID[info.ID] = info
	}
	for i := range candidates {
		if info, ok := byID[candidates[i].ID]; ok {
			candidates[i].Price = info.Price
			candidates[i].Stock = info.Stock
			candidates[i].Status = info.Status
		}
	}
	return candidates, nil
}

// groupCandidates groups by normalized name plus pack size, preserving the
// order in which groups first appear.
func groupCandidates(candidates []models.CatalogCandidate) [][]models.CatalogCandidate {
	index := make(map[string]int)
	var groups [][]models.CatalogCandidate
	for _, c := range candidates {
		key := models.NormalizeName(c.Name) + "|" + strings.ToLower(c.PackSize)
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], c)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []models.CatalogCandidate{c})
	}
	return groups
}
