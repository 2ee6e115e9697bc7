package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"pharmachat/models"
	ai "pharmachat/services/intelligence"
)

// EntryKind distinguishes what a vector table row describes.
type EntryKind string

const (
	KindProduct EntryKind = "product"
	KindFAQ     EntryKind = "faq"
)

// Entry is one row of the in-memory vector table. Vectors are unit-normalized
// at build time, so cosine similarity reduces to a dot product.
type Entry struct {
	ID        string
	Kind      EntryKind
	Topic     string
	Text      string
	Answer    string                  // populated for FAQ entries
	Candidate models.CatalogCandidate // populated for product entries
	Vector    []float32
}

// Match is an entry with its similarity to the query.
type Match struct {
	Entry
	Score float64
}

// TopicFilter restricts candidates to a topic set when the upstream
// classification is confident enough.
type TopicFilter struct {
	Topics     []string
	Confidence float64
}

const (
	// topicGateConfidence is the minimum classification confidence at which
	// the topic filter is applied at all.
	topicGateConfidence = 0.6
	// bestMatchFloor is the minimum similarity below which BestMatch reports
	// no match rather than a weak guess.
	bestMatchFloor = 0.45
)

// Engine performs brute-force cosine-similarity search over the precomputed
// vector table. The table is read-only between reloads and safe to share
// across concurrent turns.
type Engine struct {
	mu       sync.RWMutex
	entries  []Entry
	embedder ai.Embedder
}

// NewEngine creates an engine with an empty table. Call Reload before searching.
func NewEngine(embedder ai.Embedder) *Engine {
	return &Engine{embedder: embedder}
}

// Reload replaces the vector table. Entries without vectors are skipped.
func (e *Engine) Reload(entries []Entry) {
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Vector) > 0 {
			kept = append(kept, entry)
		}
	}
	e.mu.Lock()
	e.entries = kept
	e.mu.Unlock()
}

// Ready reports whether the table has been loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries) > 0
}

// Search embeds the query and returns the top k entries of the given kind by
// cosine similarity, highest first. The table is small (low thousands), so a
// full sort is used instead of a top-k select. Pass kind "" to search all
// kinds, and a nil filter to skip topic gating.
func (e *Engine) Search(ctx context.Context, query string, k int, kind EntryKind, filter *TopicFilter) ([]Match, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec = Normalize(queryVec)

	gate := filter != nil && filter.Confidence >= topicGateConfidence && len(filter.Topics) > 0
	allowed := make(map[string]bool)
	if gate {
		for _, t := range filter.Topics {
			allowed[t] = true
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	matches := make([]Match, 0, len(e.entries))
	for _, entry := range e.entries {
		if kind != "" && entry.Kind != kind {
			continue
		}
		if gate && !allowed[entry.Topic] {
			continue
		}
		score := dot(queryVec, entry.Vector)
		matches = append(matches, Match{Entry: entry, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// BestMatch returns the single best entry, or nil when even the best score is
// below the similarity floor.
func (e *Engine) BestMatch(ctx context.Context, query string, kind EntryKind, filter *TopicFilter) (*Match, error) {
	matches, err := e.Search(ctx, query, 1, kind, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 || matches[0].Score < bestMatchFloor {
		return nil, nil
	}
	return &matches[0], nil
}

// Normalize returns the unit-length copy of vec. A zero vector is returned
// unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
