package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"fieldsync/config"
	"fieldsync/core/models"
)

// QuoteAcceptedHandler reconciles the CRM-side deposit-paid notification by
// promoting the linked job to a work order. The deal stage is re-read from
// the CRM rather than trusted from the payload, and a job that is already a
// work order is left alone.
type QuoteAcceptedHandler struct {
	clients  Clients
	stages   config.StageConfig
	statuses config.StatusConfig
}

// NewQuoteAcceptedHandler creates a new quote accepted handler
func NewQuoteAcceptedHandler(clients Clients, stages config.StageConfig, statuses config.StatusConfig) *QuoteAcceptedHandler {
	return &QuoteAcceptedHandler{clients: clients, stages: stages, statuses: statuses}
}

func (h *QuoteAcceptedHandler) Handle(ctx context.Context, event models.Event) error {
	p, ok := event.Payload.(models.QuoteAcceptedPayload)
	if !ok {
		return fmt.Errorf("quote accepted event: unexpected payload %T", event.Payload)
	}
	if p.JobUUID == "" || p.DealID == "" {
		return fmt.Errorf("quote accepted event: %w", ErrMissingIdentity)
	}

	records, err := h.clients.BatchReadProperties(ctx, "deals", []string{p.DealID},
		[]string{models.PropDealStage})
	if err != nil {
		return fmt.Errorf("read deal %s: %w", p.DealID, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("deal %s: %w", p.DealID, ErrNotFound)
	}
	if stage := records[0].Property(models.PropDealStage); stage != h.stages.DepositPaid {
		return fmt.Errorf("deal %s stage %q is not deposit paid: %w", p.DealID, stage, ErrGuardFailed)
	}

	job, err := h.clients.GetJob(ctx, p.JobUUID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", p.JobUUID, err)
	}
	if statusEquals(job.Status, h.statuses.WorkOrder) {
		return fmt.Errorf("job %s is already a work order: %w", p.JobUUID, ErrGuardFailed)
	}

	slog.Info("Promoting job to work order", "job", p.JobUUID, "deal", p.DealID)
	return h.clients.SetJobStatus(ctx, p.JobUUID, h.statuses.WorkOrder)
}
