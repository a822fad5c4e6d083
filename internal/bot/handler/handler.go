package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inmo24x7_backend/internal/bot/service"
	"inmo24x7_backend/internal/bot/transport"
	"inmo24x7_backend/platform/httpkit"
	"inmo24x7_backend/platform/validator"
)

// Handler handles HTTP requests for the chat bot.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new bot handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Message processes one chat turn.
// POST /api/v1/message
func (h *Handler) Message(c *gin.Context) {
	var req transport.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Text = strings.TrimSpace(req.Text)
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tenantID, ok := httpkit.GetTenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "missing tenant", nil)
		return
	}
	sourceType := httpkit.GetSourceType(c)

	reply, err := h.svc.HandleMessage(c.Request.Context(), req.UserID, req.Text, tenantID, sourceType)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reply)
}
