package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"fieldsync/config"
	"fieldsync/core/models"
)

// JobActivityHandler reconciles "JobActivity" events. The same "activity was
// scheduled" signal means different things depending on where the job sits:
// scheduling against a quote is a consult visit, scheduling against a work
// order means the work itself is booked and the deal is won.
type JobActivityHandler struct {
	clients  Clients
	stages   config.StageConfig
	statuses config.StatusConfig
}

// NewJobActivityHandler creates a new job activity handler
func NewJobActivityHandler(clients Clients, stages config.StageConfig, statuses config.StatusConfig) *JobActivityHandler {
	return &JobActivityHandler{clients: clients, stages: stages, statuses: statuses}
}

func (h *JobActivityHandler) Handle(ctx context.Context, event models.Event) error {
	entry, ok := event.Payload.(models.EntryPayload)
	if !ok {
		return fmt.Errorf("job activity event: unexpected payload %T", event.Payload)
	}
	if entry.UUID == "" {
		return fmt.Errorf("job activity event: %w", ErrMissingIdentity)
	}

	activity, err := h.clients.GetJobActivity(ctx, entry.UUID)
	if err != nil {
		return fmt.Errorf("fetch job activity %s: %w", entry.UUID, err)
	}
	if !activity.WasScheduled {
		return fmt.Errorf("activity %s was not scheduled: %w", activity.UUID, ErrGuardFailed)
	}
	if activity.JobUUID == "" {
		return fmt.Errorf("activity %s has no job reference: %w", activity.UUID, ErrMissingIdentity)
	}

	job, err := h.clients.GetJob(ctx, activity.JobUUID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", activity.JobUUID, err)
	}

	var targetStage string
	extra := map[string]string{}
	switch {
	case statusEquals(job.Status, h.statuses.WorkOrder):
		targetStage = h.stages.ClosedWon
	case statusEquals(job.Status, h.statuses.Quote):
		targetStage = h.stages.OnSiteQuoteScheduled
		if date, ok := formatPlatformDate(activity.StartDate); ok {
			extra[models.PropConsultVisitDate] = date
		}
	default:
		return fmt.Errorf("job %s status %q: no transition for scheduled activity: %w",
			job.UUID, job.Status, ErrGuardFailed)
	}

	dealID, err := h.clients.FindDealByJobID(ctx, activity.JobUUID)
	if err != nil {
		return fmt.Errorf("resolve deal for job %s: %w", activity.JobUUID, err)
	}

	slog.Info("Advancing deal for scheduled activity",
		"deal", dealID, "job", activity.JobUUID, "stage", targetStage)
	return advanceDealStage(ctx, h.clients, dealID, targetStage, extra)
}
