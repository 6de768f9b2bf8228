// Package notification turns follow-up events into reminders: it enqueues the
// delayed reminder task, emails the owning user when the task fires and pushes
// live updates to connected clients.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sales_crm_backend/internal/email"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/repository"
	apphttp "sales_crm_backend/internal/http"
	"sales_crm_backend/internal/notification/sse"
	"sales_crm_backend/internal/scheduler"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContactReader resolves the user a reminder goes to.
type ContactReader interface {
	GetUserContact(ctx context.Context, userID uuid.UUID) (repository.UserContact, error)
}

// Module is the notification module implementing http.Module.
type Module struct {
	sender    email.Sender
	reminders scheduler.ReminderScheduler
	contacts  ContactReader
	sse       *sse.Service
	cfg       config.NotificationConfig
	now       func() time.Time
	log       *logger.Logger
}

// New creates the notification module. reminders may be nil when no Redis is
// configured; reminders are then not scheduled.
func New(sender email.Sender, reminders scheduler.ReminderScheduler, contacts ContactReader, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Module{
		sender:    sender,
		reminders: reminders,
		contacts:  contacts,
		sse:       sse.New(log),
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// SSE exposes the live stream service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the live notification stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler(apphttp.RequestScope))
}

// RegisterHandlers subscribes the module to follow-up events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.FollowUpScheduled{}.EventName(), m)
	bus.Subscribe(events.FollowUpRescheduled{}.EventName(), m)
	bus.Subscribe(events.FollowUpReminderDue{}.EventName(), m)
	bus.Subscribe(events.FollowUpCompleted{}.EventName(), m)
	bus.Subscribe(events.FollowUpExhausted{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.FollowUpScheduled:
		m.sse.Publish(e.UserID, sse.Event{
			Type:       sse.EventFollowUpScheduled,
			LeadID:     e.LeadID,
			FollowUpID: e.FollowUpID,
			Data:       gin.H{"stageKey": e.StageKey, "attempt": e.Attempt, "scheduledAt": e.ScheduledAt},
		})
		return m.scheduleReminder(ctx, e.FollowUpID, e.ScheduledAt)
	case events.FollowUpRescheduled:
		return m.scheduleReminder(ctx, e.FollowUpID, e.ScheduledAt)
	case events.FollowUpReminderDue:
		return m.handleReminderDue(ctx, e)
	case events.FollowUpCompleted:
		m.sse.Publish(e.UserID, sse.Event{
			Type:       sse.EventFollowUpCompleted,
			LeadID:     e.LeadID,
			FollowUpID: e.FollowUpID,
			Data:       gin.H{"adaRespon": e.AdaRespon, "successorId": e.SuccessorID, "exhausted": e.Exhausted},
		})
		return nil
	case events.FollowUpExhausted:
		exhausted := sse.Event{
			Type:       sse.EventFollowUpExhausted,
			LeadID:     e.LeadID,
			FollowUpID: e.FollowUpID,
			Message:    fmt.Sprintf("no response after %d attempts", e.Attempt),
		}
		m.sse.Publish(e.UserID, exhausted)
		m.sse.PublishToOverseers(e.UserID, e.BranchID, exhausted, e.UserID)
		return nil
	default:
		m.log.WithContext(ctx).Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

// scheduleReminder enqueues the reminder ReminderLead before the record is
// due. Records already in the past get none.
func (m *Module) scheduleReminder(ctx context.Context, followUpID uuid.UUID, scheduledAt time.Time) error {
	if m.reminders == nil {
		return nil
	}
	now := m.now()
	if !scheduledAt.After(now) {
		return nil
	}

	runAt := scheduledAt.Add(-m.cfg.GetReminderLead())
	if runAt.Before(now) {
		runAt = now
	}

	payload := scheduler.FollowUpReminderPayload{FollowUpID: followUpID, ScheduledAt: scheduledAt}
	if err := m.reminders.ScheduleFollowUpReminder(ctx, payload, runAt); err != nil {
		m.log.WithContext(ctx).Error("failed to schedule follow-up reminder", "error", err, "followUpId", followUpID)
		return err
	}
	return nil
}

func (m *Module) handleReminderDue(ctx context.Context, e events.FollowUpReminderDue) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:       sse.EventFollowUpReminderDue,
		LeadID:     e.LeadID,
		FollowUpID: e.FollowUpID,
		Data:       gin.H{"leadName": e.LeadName, "leadPhone": e.LeadPhone, "stageName": e.StageName, "scheduledAt": e.ScheduledAt},
	})

	if m.contacts == nil {
		return nil
	}
	contact, err := m.contacts.GetUserContact(ctx, e.UserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(contact.Email) == "" {
		m.log.WithContext(ctx).Info("reminder without recipient email", "userId", e.UserID)
		return nil
	}

	reminder := email.FollowUpReminder{
		UserName:    contact.Name,
		LeadName:    e.LeadName,
		LeadPhone:   e.LeadPhone,
		StageName:   e.StageName,
		ScheduledAt: e.ScheduledAt,
		Location:    m.cfg.GetLocation(),
	}
	if base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/"); base != "" {
		reminder.LeadURL = fmt.Sprintf("%s/leads/%s", base, e.LeadID)
	}

	if err := m.sender.SendFollowUpReminder(ctx, contact.Email, reminder); err != nil {
		m.log.WithContext(ctx).Error("failed to send follow-up reminder", "error", err, "followUpId", e.FollowUpID)
		return err
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
