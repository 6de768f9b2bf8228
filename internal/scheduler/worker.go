package scheduler

import (
	"context"
	"errors"
	"fmt"

	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// FollowUpReader is the slice of the follow-up store the worker needs.
type FollowUpReader interface {
	GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUpView, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	reader FollowUpReader
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, reader FollowUpReader, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(reader, bus, log)
	w.server = server
	return w, nil
}

func newWorker(reader FollowUpReader, bus events.Bus, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	w := &Worker{
		mux:    asynq.NewServeMux(),
		reader: reader,
		bus:    bus,
		log:    log,
	}
	w.mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	view, err := w.reader.GetFollowUp(ctx, payload.FollowUpID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Completed, cancelled or moved since the task was enqueued
	if !view.IsScheduled() || view.ScheduledAt.Unix() != payload.ScheduledAt.Unix() {
		w.log.Info("reminder skipped", "followUpId", view.ID, "status", view.Status)
		return nil
	}

	if w.bus == nil {
		return nil
	}

	return w.bus.PublishSync(ctx, events.FollowUpReminderDue{
		BaseEvent:   events.NewBaseEvent(),
		FollowUpID:  view.ID,
		LeadID:      view.LeadID,
		UserID:      view.UserID,
		LeadName:    view.LeadName,
		LeadPhone:   view.LeadPhone,
		StageName:   view.StageName,
		ScheduledAt: view.ScheduledAt,
	})
}
