package models

import "time"

// FAQEntry is one procedural question in the support corpus, with phrasing
// variations that are embedded alongside the canonical question text.
type FAQEntry struct {
	ID         string    `bson:"id" json:"id"`
	Topic      string    `bson:"topic" json:"topic"` // e.g. "ordering", "payment", "delivery"
	Question   string    `bson:"question" json:"question"`
	Variations []string  `bson:"variations,omitempty" json:"variations,omitempty"`
	Answer     string    `bson:"answer" json:"answer"`
	Embedding  []float32 `bson:"embedding,omitempty" json:"-"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}
