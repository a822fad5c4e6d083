package scheduler

import (
	"context"
	"fmt"

	"inmo24x7_backend/internal/email"
	"inmo24x7_backend/platform/config"
	"inmo24x7_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	sender        email.Sender
	notifyAddress string
	log           *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, emailCfg config.EmailConfig, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:        server,
		mux:           mux,
		sender:        sender,
		notifyAddress: emailCfg.GetHandoffNotifyAddress(),
		log:           log,
	}

	mux.HandleFunc(TaskLeadHandoff, w.handleLeadHandoff)

	return w, nil
}

func (w *Worker) handleLeadHandoff(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadHandoffPayload(task)
	if err != nil {
		return err
	}

	data := email.HandoffEmailData{
		UserID:         payload.UserID,
		Nombre:         payload.Nombre,
		Contacto:       payload.Contacto,
		Operacion:      payload.Operacion,
		Zona:           payload.Zona,
		PresupuestoMax: payload.PresupuestoMax,
		Summary:        payload.Summary,
	}
	if payload.LeadID != nil {
		data.LeadID = *payload.LeadID
	}

	if err := w.sender.SendHandoffNotification(ctx, w.notifyAddress, data); err != nil {
		return err
	}

	w.log.Info("handoff notification sent", "userId", payload.UserID, "leadId", data.LeadID)
	return nil
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
