package handler

import (
	"github.com/gin-gonic/gin"

	"inmo24x7_backend/internal/catalog/service"
	"inmo24x7_backend/internal/catalog/transport"
	"inmo24x7_backend/platform/httpkit"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Stats reports how many listings are loaded.
// GET /api/v1/admin/catalog/stats
func (h *Handler) Stats(c *gin.Context) {
	httpkit.OK(c, transport.CatalogStatsResponse{Properties: h.svc.Count()})
}
