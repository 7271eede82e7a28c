package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/platform/auth"
	"github.com/k-experience/service-reservation/internal/platform/domain"
	"github.com/k-experience/service-reservation/internal/platform/middleware"
	"github.com/k-experience/service-reservation/internal/platform/response"
)

// GroupBuyHandler handles HTTP requests for group-buy campaigns.
type GroupBuyHandler struct {
	service *application.GroupBuyService
}

// NewGroupBuyHandler creates a new GroupBuyHandler.
func NewGroupBuyHandler(service *application.GroupBuyService) *GroupBuyHandler {
	return &GroupBuyHandler{service: service}
}

// RegisterRoutes registers group-buy routes. Browsing is public; creating
// and joining require an authenticated account, since participants must be
// identifiable across the campaign lifetime.
func (h *GroupBuyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/campaigns", h.ListActiveCampaigns)
	r.GET("/campaigns/:id", h.GetCampaign)

	authed := r.Group("/campaigns")
	authed.Use(middleware.AuthMiddleware(jwtManager))
	authed.POST("", h.CreateCampaign)
	authed.POST("/:id/join", h.JoinCampaign)
}

// CreateCampaign handles POST /api/v1/campaigns.
func (h *GroupBuyHandler) CreateCampaign(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError("authentication required"))
		return
	}

	var req application.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreateCampaign(c.Request.Context(), userID.String(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// JoinCampaign handles POST /api/v1/campaigns/:id/join.
func (h *GroupBuyHandler) JoinCampaign(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domain.NewUnauthorizedError("authentication required"))
		return
	}

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign ID")
		return
	}

	var req application.JoinCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.JoinCampaign(c.Request.Context(), campaignID, userID.String(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetCampaign handles GET /api/v1/campaigns/:id.
func (h *GroupBuyHandler) GetCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid campaign ID")
		return
	}

	dto, err := h.service.GetCampaign(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListActiveCampaigns handles GET /api/v1/campaigns.
func (h *GroupBuyHandler) ListActiveCampaigns(c *gin.Context) {
	dtos, err := h.service.ListActiveCampaigns(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}
