package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

// ResourceQuerier answers catalog queries.
type ResourceQuerier interface {
	Query(ctx context.Context, q catalog.Query) ([]models.Resource, error)
}

// ResourceHandler serves the resource catalog.
type ResourceHandler struct {
	service ResourceQuerier
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(service ResourceQuerier) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// ListResources handles GET /api/v1/resources.
//
// Optional query parameters id, name and resourceType narrow the result by
// exact match; together they must all hold. Without parameters every stored
// resource is returned. The lookup is bound to the request context, so it is
// abandoned when the client disconnects.
//
// Responses:
//   - 200 {"data": [Resource...]}, possibly an empty list
//   - 503 service_unavailable when the store cannot answer
//   - 500 invalid_record when a stored document cannot be mapped
func (h *ResourceHandler) ListResources(c *gin.Context) {
	var q catalog.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		mapErrorToResponse(c, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err))
		return
	}

	resources, err := h.service.Query(c.Request.Context(), q)
	if err != nil {
		mapErrorToResponse(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, resources)
}
