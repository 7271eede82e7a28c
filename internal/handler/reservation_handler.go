package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/platform/auth"
	"github.com/k-experience/service-reservation/internal/platform/domain"
	"github.com/k-experience/service-reservation/internal/platform/middleware"
	"github.com/k-experience/service-reservation/internal/platform/response"
)

// ReservationHandler handles HTTP requests for reservations.
type ReservationHandler struct {
	service *application.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers reservation routes. Creation and survey
// submission stay public: guest checkout is supported and the survey link
// arrives by email.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.POST("/reservations", h.CreateReservation)
	r.GET("/reservations/:id", h.GetReservation)
	r.POST("/reservations/:id/survey", h.SubmitSurvey)
	r.GET("/availability", h.GetAvailability)

	mine := r.Group("/my/reservations")
	mine.Use(middleware.AuthMiddleware(jwtManager))
	mine.GET("", h.ListMyReservations)
}

// CreateReservation handles POST /api/v1/reservations. The response shape
// {success, id?, message?} is the storefront's reservation-creation
// contract.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	dto, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		c.JSON(creationStatus(err), gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": dto.ID.String()})
}

// GetAvailability handles GET /api/v1/availability?date=YYYY-MM-DD.
func (h *ReservationHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.BadRequest(c, "date query parameter is required")
		return
	}

	dto, err := h.service.GetAvailability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetReservation handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	dto, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// SubmitSurvey handles POST /api/v1/reservations/:id/survey.
func (h *ReservationHandler) SubmitSurvey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return
	}

	var req struct {
		Rating   int    `json:"rating" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.SubmitSurvey(c.Request.Context(), id, req.Rating, req.Comments)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// ListMyReservations handles GET /api/v1/my/reservations.
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	dtos, err := h.service.ListUserReservations(c.Request.Context(), userID.String())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// creationStatus maps booking failures to HTTP statuses for the creation
// contract's flat envelope.
func creationStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
