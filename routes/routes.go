package routes

import (
	"net/http"
	"time"

	"pharmachat/handlers"
	"pharmachat/services/retrieval"
	"pharmachat/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the conversational endpoint.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/chat", hb.Chat.HandleChatTurn)
		api.DELETE("/chat/sessions/:sessionId", hb.Chat.ResetSessionHandler)
	}
}

// RegisterCatalogRoutes registers catalog search endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/catalog")
	{
		api.GET("/search", hb.Catalog.SearchHandler)
		api.GET("/:id", hb.Catalog.GetByIDHandler)
	}
}

// RegisterOrderRoutes registers submitted-order read endpoints.
func RegisterOrderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/orders")
	{
		api.GET("/:id", hb.Orders.GetByIDHandler)
		api.GET("/session/:sessionId", hb.Orders.GetBySessionHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for operational tasks.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	admin := r.Group("/api/admin")
	{
		admin.POST("/embeddings/rebuild", hb.Admin.RebuildEmbeddingsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint. The retrieval engine
// counts toward readiness: a cold vector table means semantic matching is
// degraded even though the process is up.
func RegisterHealthRoute(r *gin.Engine, engine *retrieval.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if !engine.Ready() {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         status,
			"retrievalReady": engine.Ready(),
			"services":       utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, engine *retrieval.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterChatRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r, engine)
}
