// Package catalog provides the property catalog bounded context module.
package catalog

import (
	"inmo24x7_backend/internal/catalog/handler"
	"inmo24x7_backend/internal/catalog/service"
	apphttp "inmo24x7_backend/internal/http"
	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/logger"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(cfg config.CatalogConfig, log *logger.Logger) *Module {
	svc := service.New(cfg.GetCatalogCSVPath(), log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the catalog service for the bot module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/catalog/stats", m.handler.Stats)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
