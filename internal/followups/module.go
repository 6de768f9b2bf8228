// Package followups provides the follow-up scheduling bounded context module.
// This file wires the repository, the engine service and the HTTP handler, and
// starts the cadence of every new lead.
package followups

import (
	"context"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/handler"
	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/internal/followups/service"
	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the follow-ups bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates the follow-ups module and subscribes it to lead events.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.FollowUpConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, cfg, log)

	SubscribeLeadCreated(eventBus, svc)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// SubscribeLeadCreated starts the cadence of every new WARM or HOT lead. The
// leads service publishes LeadCreated synchronously, so a failure here
// reaches the creating request.
func SubscribeLeadCreated(bus events.Bus, svc *service.Service) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		_, err := svc.CreateFirstFollowUp(ctx, domain.LeadRef{
			ID:       e.LeadID,
			OwnerID:  e.OwnerID,
			BranchID: e.BranchID,
			Status:   e.Status,
			IsActive: true,
		})
		return err
	}))
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the follow-up engine for other modules and entry points.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the follow-up store to the reminder worker.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts follow-up routes on the authenticated and admin groups.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
