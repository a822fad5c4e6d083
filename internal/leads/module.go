// Package leads provides the lead management bounded context module.
package leads

import (
	"inmo24x7_backend/internal/http"
	"inmo24x7_backend/internal/leads/handler"
	"inmo24x7_backend/internal/leads/repository"
	"inmo24x7_backend/internal/leads/service"
	"inmo24x7_backend/platform/logger"
	"inmo24x7_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead lifecycle service for the bot module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	ctx.Protected.GET("/leads", m.handler.List)
	ctx.Protected.GET("/leads/by-visitor/:visitorId", m.handler.GetByVisitor)
	ctx.Protected.GET("/leads/:id", m.handler.Get)
	ctx.Admin.DELETE("/leads/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)
