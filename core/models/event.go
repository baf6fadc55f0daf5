package models

// EventType is the dispatch key carried by every inbound event. Unrecognized
// types are rejected at the ingestion boundary and never reach the queue.
type EventType string

const (
	EventJob           EventType = "Job"
	EventJobActivity   EventType = "JobActivity"
	EventCreateJob     EventType = "CreateJob"
	EventQuoteAccepted EventType = "QuoteAccepted"
	EventLostJob       EventType = "LostJob"
)

// Event is the canonical form of an inbound lifecycle notification. It is
// produced once by the normalizer, is immutable, and is consumed exactly once
// by the handler bound to its type.
type Event struct {
	ID      string // ingest correlation id, for log tracing
	Type    EventType
	Payload EventPayload
}

// EventPayload is the tagged payload variant for one event type. Payloads are
// validated at the normalizer boundary so handlers never touch raw maps.
type EventPayload interface {
	eventPayload()
}

// EntryPayload carries the first webhook entry for Job and JobActivity
// events. FallbackJobID holds the cross-reference id when the event
// originated from the CRM side and carries no entry list.
type EntryPayload struct {
	UUID          string
	ChangedFields []string
	FallbackJobID string
}

// CreateJobPayload carries the deal fields needed for first-time job
// creation. The service fields are semicolon-delimited multi-selects.
type CreateJobPayload struct {
	DealID            string
	ServiceCategories string
	ServiceType       string
	EnquiryNotes      string
	JobStreetAddress  string
}

// QuoteAcceptedPayload carries the CRM-side deposit-paid notification. The
// deal stage is not carried over; the handler re-reads it from the CRM.
type QuoteAcceptedPayload struct {
	DealID  string
	JobUUID string
}

// LostJobPayload carries the closed-lost notification.
type LostJobPayload struct {
	JobUUID string
}

func (EntryPayload) eventPayload()         {}
func (CreateJobPayload) eventPayload()     {}
func (QuoteAcceptedPayload) eventPayload() {}
func (LostJobPayload) eventPayload()       {}

// HasChangedField reports whether the webhook flagged the named field.
func (p EntryPayload) HasChangedField(name string) bool {
	for _, f := range p.ChangedFields {
		if f == name {
			return true
		}
	}
	return false
}
