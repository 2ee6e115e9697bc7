package retrieval

import (
	"testing"

	"pharmachat/models"

	"github.com/stretchr/testify/assert"
)

func TestRerankPassThroughWhenListFits(t *testing.T) {
	r := NewReranker(nil)
	candidates := []models.CatalogCandidate{
		{ID: "a", Name: "Panadol"},
		{ID: "b", Name: "Brufen"},
	}
	out := r.Rerank("panadol", candidates, 3)
	assert.Equal(t, candidates, out)
}

func TestRerankExactContainmentWins(t *testing.T) {
	r := NewReranker(nil)
	candidates := []models.CatalogCandidate{
		{ID: "a", Name: "Calpol Syrup", Similarity: 0.55},
		{ID: "b", Name: "Panadol 500mg", Similarity: 0.50},
		{ID: "c", Name: "Ponstan Forte", Similarity: 0.52},
		{ID: "d", Name: "Disprin", Similarity: 0.48},
	}
	out := r.Rerank("panadol", candidates, 2)
	assert.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
}

func TestRerankPenalizesNonMedicineOnSymptomQuery(t *testing.T) {
	r := NewReranker(nil)
	candidates := []models.CatalogCandidate{
		{ID: "cream", Name: "Fair Glow Cream", Category: "cosmetics", Similarity: 0.60},
		{ID: "tab", Name: "Paracetamol Tabs", Category: "medicine", Similarity: 0.55},
		{ID: "soap", Name: "Baby Soap", Category: "baby_care", Similarity: 0.50},
	}
	out := r.Rerank("something for fever", candidates, 2)
	assert.Equal(t, "tab", out[0].ID)
}

func TestRerankKnownCompanyBoost(t *testing.T) {
	r := NewReranker([]string{"GSK"})
	candidates := []models.CatalogCandidate{
		{ID: "x", Name: "Cofrest Syrup", Company: "Unknown Labs", Similarity: 0.50},
		{ID: "y", Name: "Cofbest Syrup", Company: "gsk", Similarity: 0.50},
		{ID: "z", Name: "Cofnext Syrup", Company: "Other", Similarity: 0.49},
	}
	out := r.Rerank("zzz", candidates, 2)
	assert.Equal(t, "y", out[0].ID)
}

func TestTokenMatchFraction(t *testing.T) {
	assert.Equal(t, 1.0, tokenMatchFraction([]string{"panadol"}, "panadol 500mg"))
	assert.Equal(t, 0.5, tokenMatchFraction([]string{"panadol", "extra"}, "panadol 500mg"))
	assert.Equal(t, 0.0, tokenMatchFraction([]string{"brufen"}, "panadol 500mg"))
}
