package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/reqctx/internal/adapters/http/dto"
	"github.com/jsamuelsen/reqctx/internal/app"
	"github.com/jsamuelsen/reqctx/internal/domain"
)

// InspectHandler handles request-context inspection endpoints.
type InspectHandler struct {
	service *app.Inspector
}

// NewInspectHandler creates a new inspection handler.
func NewInspectHandler(service *app.Inspector) *InspectHandler {
	return &InspectHandler{
		service: service,
	}
}

// InspectRequest is the query DTO for the inspection endpoint.
type InspectRequest struct {
	// Workers is the number of goroutines to fan out. Zero means the
	// configured default; the upper bound is enforced by the service.
	Workers int `form:"workers" validate:"omitempty,min=0"`
}

// GetContext handles GET /api/v1/context
// Returns what the handling goroutine observes in its request context.
func (h *InspectHandler) GetContext(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Observe(c.Request.Context()))
}

// Inspect handles GET /api/v1/context/inspect
// Fans out worker goroutines and reports what each observed in its
// propagated request context.
func (h *InspectHandler) Inspect(c *gin.Context) {
	var req InspectRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"invalid query parameters",
			dto.ValidationErrors(err),
		))

		return
	}

	report, err := h.service.Inspect(c.Request.Context(), req.Workers)
	if err != nil {
		respondInspectError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// respondInspectError maps service errors to the standard error envelope.
func respondInspectError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeValidation,
			err.Error(),
		))

	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, dto.NewErrorResponse(
			dto.ErrorCodeTimeout,
			"inspection timed out",
		))

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.ErrorCodeInternal,
			"an internal error occurred",
		))
	}
}
