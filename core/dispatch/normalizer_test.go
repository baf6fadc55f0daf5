package dispatch

import (
	"encoding/json"
	"testing"

	"fieldsync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	return body
}

func TestNormalize_JobEvent(t *testing.T) {
	body := decodeBody(t, `{
		"object": "Job",
		"entry": [{"uuid": "J1", "changed_fields": ["status", "quote_sent"]}]
	}`)

	event, err := Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, models.EventJob, event.Type)
	assert.NotEmpty(t, event.ID)

	entry, ok := event.Payload.(models.EntryPayload)
	require.True(t, ok)
	assert.Equal(t, "J1", entry.UUID)
	assert.Equal(t, []string{"status", "quote_sent"}, entry.ChangedFields)
	assert.True(t, entry.HasChangedField("status"))
	assert.False(t, entry.HasChangedField("date"))
}

func TestNormalize_FallbackJobID(t *testing.T) {
	body := decodeBody(t, `{"object": "Job", "sm8_job_id": "J9"}`)

	event, err := Normalize(body)
	require.NoError(t, err)

	entry := event.Payload.(models.EntryPayload)
	assert.Empty(t, entry.UUID)
	assert.Equal(t, "J9", entry.FallbackJobID)
}

func TestNormalize_UnrecognizedObject(t *testing.T) {
	_, err := Normalize(decodeBody(t, `{"object": "Invoice"}`))
	assert.ErrorIs(t, err, ErrUnrecognizedEventType)

	_, err = Normalize(decodeBody(t, `{"entry": []}`))
	assert.ErrorIs(t, err, ErrUnrecognizedEventType)
}

func TestNormalizeAs_CreateJob(t *testing.T) {
	body := decodeBody(t, `{
		"deal_record_id": "D1",
		"service_categories": "Roofing;Gutters",
		"service_type": "Repair",
		"enquiry_notes": "leaking",
		"job_street_address": "1 High St"
	}`)

	event, err := NormalizeAs(models.EventCreateJob, body)
	require.NoError(t, err)

	p := event.Payload.(models.CreateJobPayload)
	assert.Equal(t, "D1", p.DealID)
	assert.Equal(t, "Roofing;Gutters", p.ServiceCategories)
	assert.Equal(t, "Repair", p.ServiceType)
	assert.Equal(t, "leaking", p.EnquiryNotes)
	assert.Equal(t, "1 High St", p.JobStreetAddress)
}

func TestNormalize_QuoteAccepted(t *testing.T) {
	body := decodeBody(t, `{
		"object": "QuoteAccepted",
		"deal_record_id": "D1",
		"sm8_job_id": "J1"
	}`)

	event, err := Normalize(body)
	require.NoError(t, err)

	p := event.Payload.(models.QuoteAcceptedPayload)
	assert.Equal(t, "D1", p.DealID)
	assert.Equal(t, "J1", p.JobUUID)
}

func TestNormalize_LostJob(t *testing.T) {
	event, err := Normalize(decodeBody(t, `{"object": "LostJob", "uuid": "J1"}`))
	require.NoError(t, err)
	assert.Equal(t, models.LostJobPayload{JobUUID: "J1"}, event.Payload)
}

func TestNormalize_MalformedEntryTolerated(t *testing.T) {
	// Shape oddities surface as missing identity in the handler, not here.
	event, err := Normalize(decodeBody(t, `{"object": "JobActivity", "entry": ["bogus"]}`))
	require.NoError(t, err)
	entry := event.Payload.(models.EntryPayload)
	assert.Empty(t, entry.UUID)
}
