package reconcile

import (
	"context"
	"fmt"
	"time"

	"fieldsync/core/models"
)

// fakeClients is an in-memory Clients implementation. Writes mutate its
// state, so re-invoking a handler observes the state the first invocation
// left behind, exactly like the real remote systems.
type fakeClients struct {
	jobs         map[string]*models.Job
	activities   map[string]*models.JobActivity
	deals        map[string]map[string]string
	dealByJob    map[string]string
	dealContacts map[string][]string
	contacts     map[string]map[string]string
	proposals    []models.Proposal

	nextJobUUID    string
	nextClientUUID string
	failDealPatch  bool

	createdJobs     []models.NewJob
	createdClients  []string
	createdContacts []string
	statusWrites    []string
	dealPatches     []map[string]string
	contactPatches  []map[string]string
}

func newFakeClients() *fakeClients {
	return &fakeClients{
		jobs:         map[string]*models.Job{},
		activities:   map[string]*models.JobActivity{},
		deals:        map[string]map[string]string{},
		dealByJob:    map[string]string{},
		dealContacts: map[string][]string{},
		contacts:     map[string]map[string]string{},
	}
}

// writes counts every remote mutation issued so far.
func (f *fakeClients) writes() int {
	return len(f.createdJobs) + len(f.createdClients) + len(f.createdContacts) +
		len(f.statusWrites) + len(f.dealPatches) + len(f.contactPatches)
}

func (f *fakeClients) GetJob(_ context.Context, uuid string) (*models.Job, error) {
	job, ok := f.jobs[uuid]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", uuid, ErrNotFound)
	}
	copied := *job
	return &copied, nil
}

func (f *fakeClients) GetJobActivity(_ context.Context, uuid string) (*models.JobActivity, error) {
	activity, ok := f.activities[uuid]
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", uuid, ErrNotFound)
	}
	copied := *activity
	return &copied, nil
}

func (f *fakeClients) CreateJob(_ context.Context, job models.NewJob) (string, error) {
	f.createdJobs = append(f.createdJobs, job)
	return f.nextJobUUID, nil
}

func (f *fakeClients) SetJobStatus(_ context.Context, uuid, status string) error {
	f.statusWrites = append(f.statusWrites, uuid+"="+status)
	if job, ok := f.jobs[uuid]; ok {
		job.Status = status
	}
	return nil
}

func (f *fakeClients) CreateClient(_ context.Context, name string) (string, error) {
	f.createdClients = append(f.createdClients, name)
	return f.nextClientUUID, nil
}

func (f *fakeClients) CreateJobContact(_ context.Context, jobUUID string, contact models.Contact) error {
	f.createdContacts = append(f.createdContacts, jobUUID)
	return nil
}

func (f *fakeClients) ListRecentProposals(_ context.Context, _ time.Time) ([]models.Proposal, error) {
	return f.proposals, nil
}

func (f *fakeClients) FindDealByJobID(_ context.Context, jobUUID string) (string, error) {
	id, ok := f.dealByJob[jobUUID]
	if !ok {
		return "", fmt.Errorf("deal for job %s: %w", jobUUID, ErrNotFound)
	}
	return id, nil
}

func (f *fakeClients) BatchReadProperties(_ context.Context, objectType string, ids, properties []string) ([]models.PropertyRecord, error) {
	source := f.deals
	if objectType == "contacts" {
		source = f.contacts
	}
	var records []models.PropertyRecord
	for _, id := range ids {
		props, ok := source[id]
		if !ok {
			continue
		}
		copied := map[string]string{}
		for k, v := range props {
			copied[k] = v
		}
		records = append(records, models.PropertyRecord{ID: id, Properties: copied})
	}
	return records, nil
}

func (f *fakeClients) PatchDealProperties(_ context.Context, dealID string, properties map[string]string) error {
	if f.failDealPatch {
		return fmt.Errorf("deal %s: patch refused", dealID)
	}
	f.dealPatches = append(f.dealPatches, properties)
	props, ok := f.deals[dealID]
	if !ok {
		props = map[string]string{}
		f.deals[dealID] = props
	}
	for k, v := range properties {
		props[k] = v
	}
	return nil
}

func (f *fakeClients) PatchContactProperties(_ context.Context, contactID string, properties map[string]string) error {
	f.contactPatches = append(f.contactPatches, properties)
	props, ok := f.contacts[contactID]
	if !ok {
		props = map[string]string{}
		f.contacts[contactID] = props
	}
	for k, v := range properties {
		props[k] = v
	}
	return nil
}

func (f *fakeClients) AssociatedContactIDs(_ context.Context, dealID string) ([]string, error) {
	return f.dealContacts[dealID], nil
}

func (f *fakeClients) SearchDealsByJobIDs(_ context.Context, jobUUIDs, properties []string) ([]models.PropertyRecord, error) {
	var records []models.PropertyRecord
	for _, jobUUID := range jobUUIDs {
		dealID, ok := f.dealByJob[jobUUID]
		if !ok {
			continue
		}
		props := map[string]string{}
		for k, v := range f.deals[dealID] {
			props[k] = v
		}
		records = append(records, models.PropertyRecord{ID: dealID, Properties: props})
	}
	return records, nil
}

var _ Clients = (*fakeClients)(nil)
