// File: pharmachat/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmachat/config"
	"pharmachat/cron"
	"pharmachat/database"
	catalogRepo "pharmachat/database/repository/catalog"
	faqRepo "pharmachat/database/repository/faq"
	orderRepo "pharmachat/database/repository/order"
	"pharmachat/handlers"
	"pharmachat/middleware"
	"pharmachat/routes"
	"pharmachat/services/chat"
	ai "pharmachat/services/intelligence"
	"pharmachat/services/resolver"
	"pharmachat/services/retrieval"
	"pharmachat/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	gemini, err := ai.NewGeminiClient(
		context.Background(),
		config.AppConfig.GeminiAPIKey,
		config.AppConfig.GeminiModel,
		config.AppConfig.EmbeddingModel,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize gemini client: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	catRepo := catalogRepo.NewMongoCatalogRepo()
	fqRepo := faqRepo.NewMongoFAQRepo()
	ordRepo := orderRepo.NewMongoOrderRepo()

	// Retrieval engine, loaded from the stored embeddings. An empty index is
	// fine at startup; the rebuild task fills it in.
	engine := retrieval.NewEngine(gemini)
	if entries, err := retrieval.BuildEntries(catRepo, fqRepo); err != nil {
		logger.Sugar().Warnf("main: failed to load retrieval entries: %v", err)
	} else {
		engine.Reload(entries)
		logger.Sugar().Infof("main: retrieval engine loaded with %d entries", len(entries))
	}

	reranker := retrieval.NewReranker(knownCompanies(catRepo))

	// services.
	productResolver := resolver.NewResolver(catRepo, engine)
	sessionStore := chat.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMinutes)*time.Minute,
	)

	chatService := &chat.DefaultChatService{
		Sessions:  sessionStore,
		Catalog:   catRepo,
		Orders:    ordRepo,
		Resolver:  productResolver,
		Engine:    engine,
		Reranker:  reranker,
		Generator: gemini,
	}

	// Background embedding worker and its enqueue client.
	queueClient := cron.NewQueueClient()
	defer queueClient.Close()
	cron.InitEmbeddingWorker(gemini, catRepo, fqRepo, engine)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Chat:    handlers.NewChatHandler(chatService, sessionStore),
		Catalog: handlers.NewCatalogHandler(catRepo),
		Orders:  handlers.NewOrderHandler(ordRepo),
		Admin:   handlers.NewAdminHandler(queueClient),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, engine)

	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// knownCompanies collects the distinct manufacturer names in the catalog for
// the lexical re-ranker.
func knownCompanies(repo catalogRepo.CatalogRepository) []string {
	candidates, err := repo.All()
	if err != nil {
		utils.GetLogger().Sugar().Warnf("main: failed to list companies: %v", err)
		return nil
	}
	seen := make(map[string]struct{})
	var companies []string
	for _, c := range candidates {
		if c.Company == "" {
			continue
		}
		if _, ok := seen[c.Company]; ok {
			continue
		}
		seen[c.Company] = struct{}{}
		companies = append(companies, c.Company)
	}
	return companies
}
