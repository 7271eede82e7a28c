package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/platform/auth"
	"github.com/k-experience/service-reservation/internal/platform/middleware"
	"github.com/k-experience/service-reservation/internal/platform/response"
)

// AdminHandler exposes the operator dashboard surface: reservation
// management, statistics, coupon and affiliate administration.
type AdminHandler struct {
	reservations *application.ReservationService
	coupons      *application.CouponService
	affiliates   *application.AffiliateService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	reservations *application.ReservationService,
	coupons *application.CouponService,
	affiliates *application.AffiliateService,
) *AdminHandler {
	return &AdminHandler{reservations: reservations, coupons: coupons, affiliates: affiliates}
}

// RegisterRoutes registers admin routes behind JWT auth with the admin
// role.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))

	admin.GET("/reservations", h.ListReservations)
	admin.PATCH("/reservations/:id/status", h.UpdateReservationStatus)
	admin.GET("/stats", h.GetStats)

	admin.POST("/coupons", h.CreateCoupon)
	admin.GET("/coupons", h.ListCoupons)

	admin.POST("/affiliates", h.CreatePartner)
	admin.GET("/affiliates/:code", h.GetPartnerStats)
}

// ListReservations handles GET /api/v1/admin/reservations.
func (h *AdminHandler) ListReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	dtos, total, err := h.reservations.ListAllReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dtos, total, page, limit)
}

// UpdateReservationStatus handles PATCH /api/v1/admin/reservations/:id/status.
func (h *AdminHandler) UpdateReservationStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.reservations.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	dto, err := h.reservations.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CreateCoupon handles POST /api/v1/admin/coupons.
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req application.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.coupons.CreateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListCoupons handles GET /api/v1/admin/coupons.
func (h *AdminHandler) ListCoupons(c *gin.Context) {
	dtos, err := h.coupons.ListActiveCoupons(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// CreatePartner handles POST /api/v1/admin/affiliates.
func (h *AdminHandler) CreatePartner(c *gin.Context) {
	var req application.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.affiliates.CreatePartner(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// GetPartnerStats handles GET /api/v1/admin/affiliates/:code.
func (h *AdminHandler) GetPartnerStats(c *gin.Context) {
	dto, err := h.affiliates.GetPartnerStats(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
