package retrieval

import (
	"fmt"
	"strings"

	catalogRepo "pharmachat/database/repository/catalog"
	faqRepo "pharmachat/database/repository/faq"
	"pharmachat/models"
)

// ProductText builds the text that represents a product in the vector index.
func ProductText(p models.Product) string {
	parts := []string{p.Name, p.Company, p.Category}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	return strings.Join(parts, ". ")
}

// FAQText builds the text that represents an FAQ entry in the vector index,
// folding phrasing variations into the embedded text.
func FAQText(e models.FAQEntry) string {
	parts := append([]string{e.Question}, e.Variations...)
	return strings.Join(parts, " ")
}

// BuildEntries assembles the vector table from the stored catalog and FAQ
// embeddings. Records without embeddings are skipped; the rebuild worker
// fills them in.
func BuildEntries(catalog catalogRepo.CatalogRepository, faqs faqRepo.FAQRepository) ([]Entry, error) {
	products, err := catalog.GetAllFull()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	faqEntries, err := faqs.GetAll()
	if err != nil {
		return nil, fmt.Errorf("load faqs: %w", err)
	}

	entries := make([]Entry, 0, len(products)+len(faqEntries))
	for _, p := range products {
		if len(p.Embedding) == 0 {
			continue
		}
		entries = append(entries, Entry{
			ID:    p.ID,
			Kind:  KindProduct,
			Topic: p.Category,
			Text:  ProductText(p),
			Candidate: models.CatalogCandidate{
				ID:       p.ID,
				Name:     p.Name,
				Company:  p.Company,
				PackSize: p.PackSize,
				Category: p.Category,
				Price:    p.Price,
				Stock:    p.Stock,
				Status:   p.Status,
			},
			Vector: p.Embedding,
		})
	}
	for _, e := range faqEntries {
		if len(e.Embedding) == 0 {
			continue
		}
		entries = append(entries, Entry{
			ID:     e.ID,
			Kind:   KindFAQ,
			Topic:  e.Topic,
			Text:   FAQText(e),
			Answer: e.Answer,
			Vector: e.Embedding,
		})
	}
	return entries, nil
}
