package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/k-experience/service-reservation/internal/domain/catalog"
	"github.com/k-experience/service-reservation/internal/platform/response"
)

// CatalogHandler serves the static product catalog.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/products", h.ListProducts)
	r.GET("/packages", h.ListPackages)
}

// ListProducts handles GET /api/v1/products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	response.Success(c, catalog.Products())
}

// ListPackages handles GET /api/v1/packages.
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	response.Success(c, catalog.Packages())
}
