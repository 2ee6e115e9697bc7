package handlers

import (
	"net/http"

	catalogRepo "pharmachat/database/repository/catalog"
	"pharmachat/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes direct catalog search and lookup endpoints.
type CatalogHandler struct {
	Repo catalogRepo.CatalogRepository
}

func NewCatalogHandler(repo catalogRepo.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

// SearchHandler finds products by name substring (?q=).
func (h *CatalogHandler) SearchHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing query", "Provide a search term via ?q=")
		return
	}
	candidates, err := h.Repo.Search(query)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Catalog search failed", "Please try again.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": candidates})
}

// GetByIDHandler returns one product with current price and stock.
func (h *CatalogHandler) GetByIDHandler(c *gin.Context) {
	id := c.Param("id")
	product, err := h.Repo.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "Product not found", id)
		return
	}
	c.JSON(http.StatusOK, product)
}
