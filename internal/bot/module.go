// Package bot provides the conversational assistant bounded context module.
package bot

import (
	"inmo24x7_backend/internal/bot/handler"
	"inmo24x7_backend/internal/bot/service"
	catalogservice "inmo24x7_backend/internal/catalog/service"
	"inmo24x7_backend/internal/http"
	"inmo24x7_backend/internal/scheduler"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/logger"
	"inmo24x7_backend/platform/validator"
)

// Deps are the collaborators the bot module is wired with at startup.
type Deps struct {
	ModelCfg config.ModelConfig
	BotCfg   config.BotConfig
	Store    session.Store
	Catalog  *catalogservice.Service
	Leads    service.LeadLifecycle
	Enqueuer scheduler.HandoffEnqueuer
	Model    service.ModelClient
	Val      *validator.Validator
	Log      *logger.Logger
}

// Module is the bot bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the bot module with all its dependencies.
func NewModule(deps Deps) (*Module, error) {
	prompts, err := service.LoadPrompts(deps.BotCfg.GetBotConfigPath())
	if err != nil {
		return nil, err
	}

	dispatcher := service.NewDispatcher(deps.Catalog, deps.Leads, deps.Log)
	svc := service.New(deps.Model, deps.Store, dispatcher, deps.Enqueuer, prompts, deps.ModelCfg.GetModelTimeout(), deps.Log)

	return &Module{
		handler: handler.New(svc, deps.Val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bot"
}

// Service returns the conversation orchestrator.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts bot routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	ctx.Protected.POST("/message", m.handler.Message)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)
