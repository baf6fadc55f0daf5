package dispatch

import (
	"errors"
	"fmt"

	"fieldsync/core/models"

	"github.com/google/uuid"
)

// ErrUnrecognizedEventType is returned for payloads whose object
// discriminator maps to no known event type or no bound handler. Such
// events are rejected synchronously and never queued.
var ErrUnrecognizedEventType = errors.New("unrecognized event object type")

// Normalize converts a raw webhook body into a canonical Event, using the
// "object" discriminator to pick the payload shape. All payload validation
// happens here, once; handlers never see raw maps.
func Normalize(body map[string]interface{}) (models.Event, error) {
	objectType, _ := body["object"].(string)
	return NormalizeAs(models.EventType(objectType), body)
}

// NormalizeAs builds an Event of a known type from a raw body, bypassing
// discriminator sniffing. Used by the dedicated job-creation entry point.
func NormalizeAs(objectType models.EventType, body map[string]interface{}) (models.Event, error) {
	var payload models.EventPayload
	switch objectType {
	case models.EventJob, models.EventJobActivity:
		payload = entryPayload(body)
	case models.EventCreateJob:
		payload = models.CreateJobPayload{
			DealID:            str(body, "deal_record_id"),
			ServiceCategories: str(body, "service_categories"),
			ServiceType:       str(body, "service_type"),
			EnquiryNotes:      str(body, "enquiry_notes"),
			JobStreetAddress:  str(body, "job_street_address"),
		}
	case models.EventQuoteAccepted:
		payload = models.QuoteAcceptedPayload{
			DealID:  str(body, "deal_record_id"),
			JobUUID: str(body, "sm8_job_id"),
		}
	case models.EventLostJob:
		payload = models.LostJobPayload{JobUUID: str(body, "uuid")}
	default:
		return models.Event{}, fmt.Errorf("object type %q: %w", objectType, ErrUnrecognizedEventType)
	}

	return models.Event{
		ID:      uuid.NewString(),
		Type:    objectType,
		Payload: payload,
	}, nil
}

// entryPayload extracts the first webhook entry. CRM-originated payloads
// carry no entry list, only a top-level sm8_job_id fallback.
func entryPayload(body map[string]interface{}) models.EntryPayload {
	p := models.EntryPayload{FallbackJobID: str(body, "sm8_job_id")}

	entries, _ := body["entry"].([]interface{})
	if len(entries) == 0 {
		return p
	}
	entry, _ := entries[0].(map[string]interface{})
	if entry == nil {
		return p
	}

	p.UUID = str(entry, "uuid")
	if fields, ok := entry["changed_fields"].([]interface{}); ok {
		for _, f := range fields {
			if name, ok := f.(string); ok {
				p.ChangedFields = append(p.ChangedFields, name)
			}
		}
	}
	return p
}

func str(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
