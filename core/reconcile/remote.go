package reconcile

import (
	"context"
	"errors"
	"time"

	"fieldsync/core/models"
	"fieldsync/providers/hubspot"
	"fieldsync/providers/servicem8"
)

// Remote implements Clients on top of the two platform REST clients,
// mapping their not-found sentinels into the handler taxonomy.
type Remote struct {
	sm8 *servicem8.Client
	hs  *hubspot.Client
}

// NewRemote creates the production Clients facade
func NewRemote(sm8 *servicem8.Client, hs *hubspot.Client) *Remote {
	return &Remote{sm8: sm8, hs: hs}
}

var _ Clients = (*Remote)(nil)

func (r *Remote) GetJob(ctx context.Context, uuid string) (*models.Job, error) {
	job, err := r.sm8.GetJob(ctx, uuid)
	return job, mapNotFound(err)
}

func (r *Remote) GetJobActivity(ctx context.Context, uuid string) (*models.JobActivity, error) {
	activity, err := r.sm8.GetJobActivity(ctx, uuid)
	return activity, mapNotFound(err)
}

func (r *Remote) CreateJob(ctx context.Context, job models.NewJob) (string, error) {
	return r.sm8.CreateJob(ctx, job)
}

func (r *Remote) SetJobStatus(ctx context.Context, uuid, status string) error {
	return mapNotFound(r.sm8.SetJobStatus(ctx, uuid, status))
}

func (r *Remote) CreateClient(ctx context.Context, name string) (string, error) {
	return r.sm8.CreateClient(ctx, name)
}

func (r *Remote) CreateJobContact(ctx context.Context, jobUUID string, contact models.Contact) error {
	return r.sm8.CreateJobContact(ctx, jobUUID, contact)
}

func (r *Remote) ListRecentProposals(ctx context.Context, since time.Time) ([]models.Proposal, error) {
	return r.sm8.ListRecentProposals(ctx, since)
}

func (r *Remote) FindDealByJobID(ctx context.Context, jobUUID string) (string, error) {
	id, err := r.hs.FindDealByJobID(ctx, jobUUID)
	return id, mapNotFound(err)
}

func (r *Remote) BatchReadProperties(ctx context.Context, objectType string, ids, properties []string) ([]models.PropertyRecord, error) {
	records, err := r.hs.BatchReadProperties(ctx, objectType, ids, properties)
	return records, mapNotFound(err)
}

func (r *Remote) PatchDealProperties(ctx context.Context, dealID string, properties map[string]string) error {
	return mapNotFound(r.hs.PatchProperties(ctx, "deals", dealID, properties))
}

func (r *Remote) PatchContactProperties(ctx context.Context, contactID string, properties map[string]string) error {
	return mapNotFound(r.hs.PatchProperties(ctx, "contacts", contactID, properties))
}

func (r *Remote) AssociatedContactIDs(ctx context.Context, dealID string) ([]string, error) {
	ids, err := r.hs.AssociatedIDs(ctx, "deals", dealID, "contacts")
	return ids, mapNotFound(err)
}

func (r *Remote) SearchDealsByJobIDs(ctx context.Context, jobUUIDs, properties []string) ([]models.PropertyRecord, error) {
	return r.hs.SearchDealsByJobIDs(ctx, jobUUIDs, properties)
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, servicem8.ErrNotFound) || errors.Is(err, hubspot.ErrNotFound) {
		return errors.Join(err, ErrNotFound)
	}
	return err
}
