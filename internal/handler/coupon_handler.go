package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/platform/response"
)

// CouponHandler handles HTTP requests for coupons.
type CouponHandler struct {
	service *application.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service *application.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes registers the public coupon routes. Admin coupon
// management lives under the admin surface.
func (h *CouponHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/coupons/validate", h.ValidateCoupon)
}

// ValidateCoupon handles POST /api/v1/coupons/validate. The result is
// advisory; redemption is checked again when the reservation commits.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req application.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.ValidateCoupon(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
