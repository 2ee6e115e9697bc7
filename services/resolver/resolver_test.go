package resolver

import (
	"context"
	"strings"
	"testing"

	"pharmachat/models"
	"pharmachat/services/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves candidates from a fixed slice.
type fakeCatalog struct {
	candidates []models.CatalogCandidate
}

func (f *fakeCatalog) GetByID(id string) (*models.Product, error) { return nil, nil }

func (f *fakeCatalog) Search(query string) ([]models.CatalogCandidate, error) {
	q := strings.ToLower(query)
	var out []models.CatalogCandidate
	for _, c := range f.candidates {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) All() ([]models.CatalogCandidate, error) { return f.candidates, nil }

func (f *fakeCatalog) GetLive(ids []string) ([]models.LiveProductInfo, error) {
	var out []models.LiveProductInfo
	for _, c := range f.candidates {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, models.LiveProductInfo{ID: c.ID, Price: c.Price, Stock: c.Stock, Status: c.Status})
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetAllFull() ([]models.Product, error)   { return nil, nil }
func (f *fakeCatalog) UpdateEmbedding(string, []float32) error { return nil }

// fixedEmbedder returns a preset vector per text, falling back to a zero-ish
// vector for unknown queries.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[strings.ToLower(text)]; ok {
		return v, nil
	}
	return []float32{0.01, 0.01, 0.01}, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{candidates: []models.CatalogCandidate{
		{ID: "p1", Name: "Panadol 500mg", Company: "GSK", PackSize: "200s", Category: "medicine", Price: 250, Stock: 100, Status: "active"},
		{ID: "p2", Name: "Panadol Extra", Company: "GSK", PackSize: "100s", Category: "medicine", Price: 300, Stock: 50, Status: "active"},
		{ID: "p3", Name: "Brufen 400mg", Company: "Abbott", PackSize: "30s", Category: "medicine", Price: 120, Stock: 30, Status: "active"},
		{ID: "p4", Name: "Disprin", Company: "RB", PackSize: "100s", Category: "medicine", Price: 90, Stock: 0, Status: "out_of_stock"},
	}}
}

func emptyEngine() *retrieval.Engine {
	return retrieval.NewEngine(&fixedEmbedder{})
}

func TestResolveExactSubstring(t *testing.T) {
	r := NewResolver(testCatalog(), emptyEngine())

	res, err := r.Resolve(context.Background(), "brufen")
	require.NoError(t, err)
	assert.Equal(t, ResolvedOne, res.Kind)
	require.NotNil(t, res.Product)
	assert.Equal(t, "p3", res.Product.ID)
}

func TestResolveAmbiguous(t *testing.T) {
	r := NewResolver(testCatalog(), emptyEngine())

	res, err := r.Resolve(context.Background(), "panadol")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 2)
}

func TestResolveReverseContainment(t *testing.T) {
	// The fragment contains the product name rather than the other way around.
	r := NewResolver(testCatalog(), emptyEngine())

	res, err := r.Resolve(context.Background(), "disprin for my headache")
	require.NoError(t, err)
	assert.Equal(t, ResolvedOne, res.Kind)
	require.NotNil(t, res.Product)
	assert.Equal(t, "p4", res.Product.ID)
}

func TestResolveTypoTier(t *testing.T) {
	r := NewResolver(testCatalog(), emptyEngine())

	res, err := r.Resolve(context.Background(), "brufin")
	require.NoError(t, err)
	assert.Equal(t, ResolvedOne, res.Kind)
	require.NotNil(t, res.Product)
	assert.Equal(t, "p3", res.Product.ID)
}

func TestResolveDuplicateListingsCollapse(t *testing.T) {
	// Same normalized name and pack size, different catalog rows (e.g. batches).
	catalog := &fakeCatalog{candidates: []models.CatalogCandidate{
		{ID: "a1", Name: "Augmentin 625mg", PackSize: "6s", Price: 480, Stock: 10, Status: "active"},
		{ID: "a2", Name: "Augmentin  625MG", PackSize: "6S", Price: 480, Stock: 4, Status: "active"},
	}}
	r := NewResolver(catalog, emptyEngine())

	res, err := r.Resolve(context.Background(), "augmentin")
	require.NoError(t, err)
	assert.Equal(t, ResolvedOne, res.Kind)
	require.NotNil(t, res.Product)
	assert.Equal(t, "a1", res.Product.ID)
}

func TestResolveSemanticFallback(t *testing.T) {
	catalog := testCatalog()
	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"fever reducer tablets": {1, 0, 0},
	}}
	engine := retrieval.NewEngine(embedder)
	engine.Reload([]retrieval.Entry{
		{
			ID:        "p1",
			Kind:      retrieval.KindProduct,
			Candidate: catalog.candidates[0],
			Vector:    retrieval.Normalize([]float32{0.9, 0.1, 0}),
		},
		{
			ID:        "p3",
			Kind:      retrieval.KindProduct,
			Candidate: catalog.candidates[2],
			Vector:    retrieval.Normalize([]float32{0, 0, 1}),
		},
	})
	r := NewResolver(catalog, engine)

	res, err := r.Resolve(context.Background(), "fever reducer tablets")
	require.NoError(t, err)
	assert.Equal(t, ResolvedOne, res.Kind)
	require.NotNil(t, res.Product)
	assert.Equal(t, "p1", res.Product.ID)
	// Live hydration fills current stock back in.
	assert.Equal(t, 100, res.Product.Stock)
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(testCatalog(), emptyEngine())

	res, err := r.Resolve(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)

	res, err = r.Resolve(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res.Kind)
}

func TestResolveAmbiguityCap(t *testing.T) {
	var candidates []models.CatalogCandidate
	names := []string{"Cofcol Syrup", "Cofcol DM", "Cofcol Plus", "Cofcol Junior", "Cofcol Forte", "Cofcol Night", "Cofcol Day"}
	for i, name := range names {
		candidates = append(candidates, models.CatalogCandidate{
			ID: string(rune('a' + i)), Name: name, PackSize: "60ml", Stock: 5, Status: "active",
		})
	}
	r := NewResolver(&fakeCatalog{candidates: candidates}, emptyEngine())

	res, err := r.Resolve(context.Background(), "cofcol")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, MaxAmbiguityCandidates)
}
