package models

// Job represents a field-service job record. Owned by the remote platform;
// this system only reads it and issues targeted status transitions.
type Job struct {
	UUID               string
	Status             string
	QuoteSent          bool
	QuoteDate          string // platform date string, may be the sentinel
	TotalInvoiceAmount float64
}

// JobActivity represents a scheduled activity on a job. Read-only from this
// system's perspective.
type JobActivity struct {
	UUID         string
	JobUUID      string
	WasScheduled bool
	StartDate    string // platform date string, may be the sentinel
}

// Proposal represents a quote document sent for a job. The viewed timestamp
// is the sentinel until the customer first opens it.
type Proposal struct {
	UUID                string
	JobUUID             string
	LastViewedTimestamp string
}

// NewJob holds the fields for first-time job creation.
type NewJob struct {
	Status      string
	Address     string
	Description string
	Date        string // YYYY-MM-DD
}

// Contact is the primary person attached to a deal or job.
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	ClientID  string // field-service client uuid, if already linked
}
