package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k-experience/service-reservation/internal/platform/domain"
)

// Success writes a 200 with the standard envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 with the standard envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 with pagination metadata.
func Paginated(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// Error maps a domain error to the appropriate HTTP status.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		message = domErr.Message
		switch {
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidState):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}
