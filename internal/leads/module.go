// Package leads provides the lead bounded context module.
// This file defines the module that encapsulates leads setup and route registration.
package leads

import (
	"context"

	"sales_crm_backend/internal/events"
	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/internal/leads/handler"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/leads/service"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the leads module and subscribes it to follow-up events.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.LeadConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, cfg, log)

	eventBus.Subscribe(events.FollowUpExhausted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.FollowUpExhausted)
		if !ok {
			return nil
		}
		return svc.HandleFollowUpExhausted(ctx, e)
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
