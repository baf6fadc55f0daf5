package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fieldsync/config"
	"fieldsync/core/models"
)

var contactProperties = []string{"firstname", "lastname", "email", "phone", models.PropClientID}

// CreateJobHandler performs first-time job creation from a deal. Two guards
// protect it: the deal must sit at the job-creation stage, and a deal that
// already carries a job reference short-circuits before any write, so
// replays never create a second job. Writing the job uuid back onto the
// deal at the end is what arms that second guard.
type CreateJobHandler struct {
	clients  Clients
	stages   config.StageConfig
	statuses config.StatusConfig

	now func() time.Time
}

// NewCreateJobHandler creates a new job creation handler
func NewCreateJobHandler(clients Clients, stages config.StageConfig, statuses config.StatusConfig) *CreateJobHandler {
	return &CreateJobHandler{
		clients:  clients,
		stages:   stages,
		statuses: statuses,
		now:      time.Now,
	}
}

func (h *CreateJobHandler) Handle(ctx context.Context, event models.Event) error {
	p, ok := event.Payload.(models.CreateJobPayload)
	if !ok {
		return fmt.Errorf("create job event: unexpected payload %T", event.Payload)
	}
	if p.DealID == "" {
		return fmt.Errorf("create job event: %w", ErrMissingIdentity)
	}

	records, err := h.clients.BatchReadProperties(ctx, "deals", []string{p.DealID},
		[]string{models.PropDealStage, models.PropJobID})
	if err != nil {
		return fmt.Errorf("read deal %s: %w", p.DealID, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("deal %s: %w", p.DealID, ErrNotFound)
	}
	deal := records[0]

	if jobID := deal.Property(models.PropJobID); jobID != "" {
		return fmt.Errorf("deal %s already linked to job %s: %w", p.DealID, jobID, ErrGuardFailed)
	}
	if stage := deal.Property(models.PropDealStage); stage != h.stages.JobCreationRequired {
		return fmt.Errorf("deal %s stage %q does not allow job creation: %w",
			p.DealID, stage, ErrGuardFailed)
	}

	contact, err := h.resolveContact(ctx, p.DealID)
	if err != nil {
		return err
	}

	if contact.ClientID == "" {
		clientUUID, err := h.createClient(ctx, contact)
		if err != nil {
			return err
		}
		contact.ClientID = clientUUID
	}

	job := models.NewJob{
		Status:      h.statuses.Quote,
		Address:     p.JobStreetAddress,
		Description: composeDescription(p),
		Date:        h.now().Format("2006-01-02"),
	}
	jobUUID, err := h.clients.CreateJob(ctx, job)
	if err != nil {
		return fmt.Errorf("create job for deal %s: %w", p.DealID, err)
	}
	slog.Info("Created job for deal", "deal", p.DealID, "job", jobUUID)

	// Job exists from here on; later failures leave the systems partially
	// applied until the back-reference lands on a retry or manual fix.
	if err := h.clients.CreateJobContact(ctx, jobUUID, contact); err != nil {
		slog.Error("Failed to attach job contact", "job", jobUUID, "error", err)
	}

	if err := h.clients.PatchDealProperties(ctx, p.DealID,
		map[string]string{models.PropJobID: jobUUID}); err != nil {
		return fmt.Errorf("write job reference %s onto deal %s: %w", jobUUID, p.DealID, err)
	}
	return nil
}

// resolveContact loads the deal's primary associated contact.
func (h *CreateJobHandler) resolveContact(ctx context.Context, dealID string) (models.Contact, error) {
	contactIDs, err := h.clients.AssociatedContactIDs(ctx, dealID)
	if err != nil {
		return models.Contact{}, fmt.Errorf("list contacts for deal %s: %w", dealID, err)
	}
	if len(contactIDs) == 0 {
		return models.Contact{}, fmt.Errorf("no contacts associated with deal %s: %w", dealID, ErrNotFound)
	}

	records, err := h.clients.BatchReadProperties(ctx, "contacts", contactIDs[:1], contactProperties)
	if err != nil {
		return models.Contact{}, fmt.Errorf("read contact %s: %w", contactIDs[0], err)
	}
	if len(records) == 0 {
		return models.Contact{}, fmt.Errorf("contact %s: %w", contactIDs[0], ErrNotFound)
	}

	rec := records[0]
	return models.Contact{
		ID:        rec.ID,
		FirstName: rec.Property("firstname"),
		LastName:  rec.Property("lastname"),
		Email:     rec.Property("email"),
		Phone:     rec.Property("phone"),
		ClientID:  rec.Property(models.PropClientID),
	}, nil
}

// createClient creates the counterpart client record and stores its uuid on
// the CRM contact, so the next deal for the same person reuses it.
func (h *CreateJobHandler) createClient(ctx context.Context, contact models.Contact) (string, error) {
	fullName := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	clientUUID, err := h.clients.CreateClient(ctx, fullName)
	if err != nil {
		return "", fmt.Errorf("create client %q: %w", fullName, err)
	}
	slog.Info("Created client", "client", clientUUID, "contact", contact.ID)

	if contact.ID != "" {
		if err := h.clients.PatchContactProperties(ctx, contact.ID,
			map[string]string{models.PropClientID: clientUUID}); err != nil {
			slog.Error("Failed to store client id on contact", "contact", contact.ID, "error", err)
		}
	}
	return clientUUID, nil
}

// composeDescription builds the structured job description from the deal's
// semicolon-delimited multi-select fields.
func composeDescription(p models.CreateJobPayload) string {
	return formatMultiSelect("Service Category", p.ServiceCategories) + "\n" +
		formatMultiSelect("Service Type", p.ServiceType) + "\n" +
		"Enquiry Notes: " + strings.TrimSpace(p.EnquiryNotes)
}

func formatMultiSelect(label, value string) string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if s := strings.TrimSpace(item); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return label + ":"
	}
	return label + ": " + strings.Join(items, ", ")
}
