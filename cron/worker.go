package cron

import (
	"context"
	"log"
	"time"

	"pharmachat/config"
	catalogRepo "pharmachat/database/repository/catalog"
	faqRepo "pharmachat/database/repository/faq"
	ai "pharmachat/services/intelligence"
	"pharmachat/services/retrieval"

	"github.com/hibiken/asynq"
)

const TypeEmbeddingsRebuild = "embeddings:rebuild"

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient creates the asynq client used to enqueue background tasks.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// EnqueueRebuild schedules an embedding-index rebuild.
func EnqueueRebuild(client *asynq.Client) error {
	task := asynq.NewTask(TypeEmbeddingsRebuild, nil)
	_, err := client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute))
	return err
}

// InitEmbeddingWorker runs the async worker in background. The rebuild task
// re-embeds the catalog and FAQ corpus, persists the normalized vectors, and
// reloads the retrieval engine's in-memory table.
func InitEmbeddingWorker(embedder ai.Embedder, catalog catalogRepo.CatalogRepository, faqs faqRepo.FAQRepository, engine *retrieval.Engine) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmbeddingsRebuild, handleRebuildTask(embedder, catalog, faqs, engine))

	go func() {
		log.Println("[EmbeddingWorker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Printf("[EmbeddingWorker] worker stopped: %v", err)
		}
	}()
}

func handleRebuildTask(embedder ai.Embedder, catalog catalogRepo.CatalogRepository, faqs faqRepo.FAQRepository, engine *retrieval.Engine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()

		products, err := catalog.GetAllFull()
		if err != nil {
			return err
		}
		for _, p := range products {
			vec, err := embedder.Embed(ctx, retrieval.ProductText(p))
			if err != nil {
				log.Printf("[EmbeddingWorker] embed product %s failed: %v", p.ID, err)
				continue
			}
			if err := catalog.UpdateEmbedding(p.ID, retrieval.Normalize(vec)); err != nil {
				log.Printf("[EmbeddingWorker] store product %s failed: %v", p.ID, err)
			}
		}

		faqEntries, err := faqs.GetAll()
		if err != nil {
			return err
		}
		for _, e := range faqEntries {
			vec, err := embedder.Embed(ctx, retrieval.FAQText(e))
			if err != nil {
				log.Printf("[EmbeddingWorker] embed faq %s failed: %v", e.ID, err)
				continue
			}
			if err := faqs.UpdateEmbedding(e.ID, retrieval.Normalize(vec)); err != nil {
				log.Printf("[EmbeddingWorker] store faq %s failed: %v", e.ID, err)
			}
		}

		entries, err := retrieval.BuildEntries(catalog, faqs)
		if err != nil {
			return err
		}
		engine.Reload(entries)

		log.Printf("[EmbeddingWorker] rebuild finished: %d entries in %s", len(entries), time.Since(start))
		return nil
	}
}
