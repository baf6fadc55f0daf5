package reconcile

import (
	"context"
	"time"

	"fieldsync/core/models"
)

// Handler is the capability the dispatcher invokes for one event. Handlers
// re-derive "is an update needed" from freshly fetched remote state on every
// invocation; they hold no state of their own.
type Handler interface {
	Handle(ctx context.Context, event models.Event) error
}

// Clients is the remote job/deal facade injected into every handler and the
// poller. It is the only path to the two platforms, so handlers never couple
// to each other or to a concrete transport.
//
// Lookups that match nothing report ErrNotFound.
type Clients interface {
	// Field-service side
	GetJob(ctx context.Context, uuid string) (*models.Job, error)
	GetJobActivity(ctx context.Context, uuid string) (*models.JobActivity, error)
	CreateJob(ctx context.Context, job models.NewJob) (string, error)
	SetJobStatus(ctx context.Context, uuid, status string) error
	CreateClient(ctx context.Context, name string) (string, error)
	CreateJobContact(ctx context.Context, jobUUID string, contact models.Contact) error
	ListRecentProposals(ctx context.Context, since time.Time) ([]models.Proposal, error)

	// CRM side
	FindDealByJobID(ctx context.Context, jobUUID string) (string, error)
	BatchReadProperties(ctx context.Context, objectType string, ids, properties []string) ([]models.PropertyRecord, error)
	PatchDealProperties(ctx context.Context, dealID string, properties map[string]string) error
	PatchContactProperties(ctx context.Context, contactID string, properties map[string]string) error
	AssociatedContactIDs(ctx context.Context, dealID string) ([]string, error)
	// SearchDealsByJobIDs resolves deals for a batch of job uuids. Callers
	// must chunk the uuid list to the configured search input limit.
	SearchDealsByJobIDs(ctx context.Context, jobUUIDs, properties []string) ([]models.PropertyRecord, error)
}
