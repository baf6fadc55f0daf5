package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"fieldsync/config"
	"fieldsync/core/models"
)

// LostJobHandler reconciles a deal closed as lost by marking the linked job
// unsuccessful on the field-service side.
type LostJobHandler struct {
	clients  Clients
	statuses config.StatusConfig
}

// NewLostJobHandler creates a new lost job handler
func NewLostJobHandler(clients Clients, statuses config.StatusConfig) *LostJobHandler {
	return &LostJobHandler{clients: clients, statuses: statuses}
}

func (h *LostJobHandler) Handle(ctx context.Context, event models.Event) error {
	p, ok := event.Payload.(models.LostJobPayload)
	if !ok {
		return fmt.Errorf("lost job event: unexpected payload %T", event.Payload)
	}
	if p.JobUUID == "" {
		return fmt.Errorf("lost job event: %w", ErrMissingIdentity)
	}

	job, err := h.clients.GetJob(ctx, p.JobUUID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", p.JobUUID, err)
	}
	if statusEquals(job.Status, h.statuses.Unsuccessful) {
		return fmt.Errorf("job %s already unsuccessful: %w", p.JobUUID, ErrGuardFailed)
	}

	slog.Info("Marking job unsuccessful", "job", p.JobUUID)
	return h.clients.SetJobStatus(ctx, p.JobUUID, h.statuses.Unsuccessful)
}
