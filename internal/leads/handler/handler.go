package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inmo24x7_backend/internal/leads/service"
	"inmo24x7_backend/internal/leads/transport"
	"inmo24x7_backend/platform/httpkit"
	"inmo24x7_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead id"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List retrieves recent leads for the tenant.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing tenant", nil)
		return
	}

	items, err := h.svc.List(c.Request.Context(), tenantID, req.SourceType, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.LeadListResponse{Items: items, Total: len(items)})
}

// Get retrieves a single lead.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing tenant", nil)
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// GetByVisitor retrieves the most recent lead for a chat visitor.
// GET /api/v1/leads/by-visitor/:visitorId
func (h *Handler) GetByVisitor(c *gin.Context) {
	visitorID := c.Param("visitorId")
	if visitorID == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing visitor id", nil)
		return
	}

	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing tenant", nil)
		return
	}

	lead, err := h.svc.GetByVisitor(c.Request.Context(), tenantID, visitorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Delete removes a lead.
// DELETE /api/v1/admin/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing tenant", nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), tenantID, id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
