package faqRepo

import (
	"context"
	"fmt"
	"time"

	"pharmachat/database"
	"pharmachat/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFAQRepo implements FAQRepository using MongoDB.
type MongoFAQRepo struct {
	coll *mongo.Collection
}

// NewMongoFAQRepo creates a new instance of FAQRepository using MongoDB.
func NewMongoFAQRepo() FAQRepository {
	coll := database.Collection("faqs")
	repo := &MongoFAQRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoFAQRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "topic", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetAll retrieves every FAQ entry including embeddings.
func (r *MongoFAQRepo) GetAll() ([]models.FAQEntry, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("faq listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.FAQEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode faq entries: %w", err)
	}
	return entries, nil
}

// GetByID retrieves a single FAQ entry.
func (r *MongoFAQRepo) GetByID(id string) (*models.FAQEntry, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var entry models.FAQEntry
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to fetch faq entry %s: %w", id, err)
	}
	return &entry, nil
}

// UpdateEmbedding stores a recomputed embedding vector for an entry.
func (r *MongoFAQRepo) UpdateEmbedding(id string, vector []float32) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"embedding": vector, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update embedding for faq %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no faq entry found with id %s", id)
	}
	return nil
}
