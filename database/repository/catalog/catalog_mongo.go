package catalogRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"pharmachat/database"
	"pharmachat/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo creates a new instance of CatalogRepository using MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	coll := database.Collection("products")
	repo := &MongoCatalogRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its unique ID.
func (r *MongoCatalogRepo) GetByID(id string) (*models.Product, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to fetch product with id %s: %w", id, err)
	}
	return &product, nil
}

// Search finds products whose name contains the query, case-insensitively.
func (r *MongoCatalogRepo) Search(query string) ([]models.CatalogCandidate, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}}
	opts := options.Find().SetProjection(candidateProjection()).SetLimit(50)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog search for %q failed: %w", query, err)
	}
	defer cursor.Close(ctx)

	return decodeCandidates(ctx, cursor)
}

// All retrieves the id/name/company/pack projection of every product.
func (r *MongoCatalogRepo) All() ([]models.CatalogCandidate, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetProjection(candidateProjection()))
	if err != nil {
		return nil, fmt.Errorf("catalog listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeCandidates(ctx, cursor)
}

// GetLive retrieves current price, stock and status for the given ids.
func (r *MongoCatalogRepo) GetLive(ids []string) ([]models.LiveProductInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{
		"id": 1, "price": 1, "stock": 1, "status": 1,
	})
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("live lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []models.LiveProductInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("failed to decode live product info: %w", err)
	}
	return infos, nil
}

// GetAllFull retrieves full product records including embeddings.
func (r *MongoCatalogRepo) GetAllFull() ([]models.Product, error) {
	ctx, cancel := newContext(30 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("full catalog listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// UpdateEmbedding stores a recomputed embedding vector for a product.
func (r *MongoCatalogRepo) UpdateEmbedding(id string, vector []float32) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"embedding": vector, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update embedding for product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no product found with id %s", id)
	}
	return nil
}

func candidateProjection() bson.M {
	return bson.M{
		"id": 1, "name": 1, "company": 1, "pack_size": 1,
		"category": 1, "price": 1, "stock": 1, "status": 1,
	}
}

func decodeCandidates(ctx context.Context, cursor *mongo.Cursor) ([]models.CatalogCandidate, error) {
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog candidates: %w", err)
	}
	candidates := make([]models.CatalogCandidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, models.CatalogCandidate{
			ID:       p.ID,
			Name:     p.Name,
			Company:  p.Company,
			PackSize: p.PackSize,
			Category: p.Category,
			Price:    p.Price,
			Stock:    p.Stock,
			Status:   p.Status,
		})
	}
	return candidates, nil
}
