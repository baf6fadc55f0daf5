package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fieldsync/config"
	"fieldsync/core/models"
)

// JobHandler reconciles "Job" events from the field-service side. A single
// webhook notification names the fields that changed; each recognized field
// maps to its own guarded transition on the linked deal.
type JobHandler struct {
	clients  Clients
	stages   config.StageConfig
	statuses config.StatusConfig
}

// NewJobHandler creates a new job event handler
func NewJobHandler(clients Clients, stages config.StageConfig, statuses config.StatusConfig) *JobHandler {
	return &JobHandler{clients: clients, stages: stages, statuses: statuses}
}

// Handle routes on the changed-field list: a status change is checked for
// quote acceptance, a quote_sent change for quote dispatch. The two legs are
// independent; a guard no-op on the status leg must not stop the quote-sent
// leg when both fields changed. CRM-originated payloads carry no change list,
// only the fallback job id; those are treated as quote-sent checks.
func (h *JobHandler) Handle(ctx context.Context, event models.Event) error {
	entry, ok := event.Payload.(models.EntryPayload)
	if !ok {
		return fmt.Errorf("job event: unexpected payload %T", event.Payload)
	}

	jobUUID := entry.UUID
	if jobUUID == "" {
		jobUUID = entry.FallbackJobID
	}
	if jobUUID == "" {
		return fmt.Errorf("job event: %w", ErrMissingIdentity)
	}

	statusChanged := entry.HasChangedField("status")
	var statusErr error
	if statusChanged {
		statusErr = h.syncQuoteAccepted(ctx, jobUUID)
		if statusErr != nil && !errors.Is(statusErr, ErrGuardFailed) {
			return statusErr
		}
	}
	if entry.HasChangedField("quote_sent") {
		return h.syncQuoteSent(ctx, jobUUID)
	}
	if entry.UUID == "" {
		// Fallback-id payloads carry no change list.
		return h.syncQuoteSent(ctx, jobUUID)
	}
	if !statusChanged {
		return fmt.Errorf("job %s: no syncable field change: %w", jobUUID, ErrGuardFailed)
	}
	return statusErr
}

// syncQuoteSent advances the linked deal to the quote-sent stage once the
// job actually carries a sent quote, copying the quote date and amount over.
func (h *JobHandler) syncQuoteSent(ctx context.Context, jobUUID string) error {
	job, err := h.clients.GetJob(ctx, jobUUID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", jobUUID, err)
	}
	if !job.QuoteSent {
		return fmt.Errorf("job %s: quote not sent yet: %w", jobUUID, ErrGuardFailed)
	}

	dealID, err := h.clients.FindDealByJobID(ctx, jobUUID)
	if err != nil {
		return fmt.Errorf("resolve deal for job %s: %w", jobUUID, err)
	}

	extra := map[string]string{}
	if date, ok := formatPlatformDate(job.QuoteDate); ok {
		extra[models.PropQuoteDate] = date
	}
	if job.TotalInvoiceAmount > 0 {
		extra[models.PropAmount] = formatAmount(job.TotalInvoiceAmount)
	}

	slog.Info("Advancing deal to quote sent", "deal", dealID, "job", jobUUID)
	return advanceDealStage(ctx, h.clients, dealID, h.stages.QuoteSentUnopened, extra)
}

// syncQuoteAccepted advances the linked deal to the quote-accepted stage
// once the job has been promoted to a work order on the field-service side.
func (h *JobHandler) syncQuoteAccepted(ctx context.Context, jobUUID string) error {
	job, err := h.clients.GetJob(ctx, jobUUID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", jobUUID, err)
	}
	if !statusEquals(job.Status, h.statuses.WorkOrder) {
		return fmt.Errorf("job %s status %q is not a work order: %w", jobUUID, job.Status, ErrGuardFailed)
	}

	dealID, err := h.clients.FindDealByJobID(ctx, jobUUID)
	if err != nil {
		return fmt.Errorf("resolve deal for job %s: %w", jobUUID, err)
	}

	extra := map[string]string{}
	if job.TotalInvoiceAmount > 0 {
		extra[models.PropAmount] = formatAmount(job.TotalInvoiceAmount)
	}

	slog.Info("Advancing deal to quote accepted", "deal", dealID, "job", jobUUID)
	return advanceDealStage(ctx, h.clients, dealID, h.stages.QuoteAccepted, extra)
}
