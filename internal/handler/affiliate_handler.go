package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/k-experience/service-reservation/internal/application"
)

// AffiliateHandler handles referral link tracking.
type AffiliateHandler struct {
	service          *application.AffiliateService
	storefrontOrigin string
}

// NewAffiliateHandler creates a new AffiliateHandler.
func NewAffiliateHandler(service *application.AffiliateService, storefrontOrigin string) *AffiliateHandler {
	return &AffiliateHandler{service: service, storefrontOrigin: storefrontOrigin}
}

// RegisterRoutes registers the referral redirect route at the engine root,
// outside the versioned API group, so shared short links stay stable.
func (h *AffiliateHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/r/:code", h.TrackAndRedirect)
}

// TrackAndRedirect handles GET /r/:code. The click is recorded
// best-effort and the visitor lands on the storefront with the referral
// code preserved in the query string, so a later checkout can attribute
// the sale.
func (h *AffiliateHandler) TrackAndRedirect(c *gin.Context) {
	code := c.Param("code")
	h.service.TrackClick(c.Request.Context(), code)

	target := h.storefrontOrigin + "/?ref=" + url.QueryEscape(code)
	c.Redirect(http.StatusFound, target)
}
