package reconcile

import (
	"context"
	"testing"

	"fieldsync/config"
	"fieldsync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStages = config.StageConfig{
		JobCreationRequired:  "100",
		OnSiteQuoteScheduled: "101",
		QuoteSentUnopened:    "102",
		QuoteViewed:          "103",
		QuoteAccepted:        "104",
		DepositPaid:          "105",
		ClosedWon:            "106",
	}
	testStatuses = config.StatusConfig{
		Quote:        "Quote",
		WorkOrder:    "Work Order",
		Unsuccessful: "Unsuccessful",
	}
)

func entryEvent(t models.EventType, uuid string, changed ...string) models.Event {
	return models.Event{
		ID:   "evt-1",
		Type: t,
		Payload: models.EntryPayload{
			UUID:          uuid,
			ChangedFields: changed,
		},
	}
}

func TestJobHandler_QuoteSent(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{
		UUID:               "J1",
		Status:             "Quote",
		QuoteSent:          true,
		QuoteDate:          "2024-03-15 09:30:00",
		TotalInvoiceAmount: 1250.5,
	}
	fake.dealByJob["J1"] = "D1"
	fake.deals["D1"] = map[string]string{models.PropDealStage: "100"}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "quote_sent"))
	require.NoError(t, err)

	require.Len(t, fake.dealPatches, 1)
	assert.Equal(t, map[string]string{
		models.PropDealStage: "102",
		models.PropQuoteDate: "2024-03-15",
		models.PropAmount:    "1250.5",
	}, fake.dealPatches[0])
}

func TestJobHandler_QuoteSent_SentinelDateOmitted(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", QuoteSent: true, QuoteDate: config.SentinelDate}
	fake.dealByJob["J1"] = "D1"
	fake.deals["D1"] = map[string]string{models.PropDealStage: "100"}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "quote_sent"))
	require.NoError(t, err)

	require.Len(t, fake.dealPatches, 1)
	assert.NotContains(t, fake.dealPatches[0], models.PropQuoteDate)
	assert.NotContains(t, fake.dealPatches[0], models.PropAmount)
}

func TestJobHandler_QuoteSent_GuardNotSent(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", QuoteSent: false}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "quote_sent"))
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Zero(t, fake.writes())
}

func TestJobHandler_QuoteSent_Idempotent(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", QuoteSent: true}
	fake.dealByJob["J1"] = "D1"
	fake.deals["D1"] = map[string]string{models.PropDealStage: "100"}

	h := NewJobHandler(fake, testStages, testStatuses)
	event := entryEvent(models.EventJob, "J1", "quote_sent")

	require.NoError(t, h.Handle(context.Background(), event))
	require.Len(t, fake.dealPatches, 1)

	// Same event again, remote state as the first run left it.
	err := h.Handle(context.Background(), event)
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Len(t, fake.dealPatches, 1)
}

func TestJobHandler_StatusChanged_WorkOrder(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", Status: " work order ", TotalInvoiceAmount: 900}
	fake.dealByJob["J1"] = "D1"
	fake.deals["D1"] = map[string]string{models.PropDealStage: "102"}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "status"))
	require.NoError(t, err)

	require.Len(t, fake.dealPatches, 1)
	assert.Equal(t, "104", fake.dealPatches[0][models.PropDealStage])
	assert.Equal(t, "900", fake.dealPatches[0][models.PropAmount])
}

func TestJobHandler_StatusChanged_NotWorkOrder(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", Status: "Quote"}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "status"))
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Zero(t, fake.writes())
}

func TestJobHandler_StatusGuardDoesNotBlockQuoteSent(t *testing.T) {
	fake := newFakeClients()
	// Still a quote, so the status leg is a no-op; the quote-sent leg must
	// run anyway.
	fake.jobs["J1"] = &models.Job{
		UUID:      "J1",
		Status:    "Quote",
		QuoteSent: true,
		QuoteDate: "2024-03-15 09:30:00",
	}
	fake.dealByJob["J1"] = "D1"
	fake.deals["D1"] = map[string]string{models.PropDealStage: "100"}

	h := NewJobHandler(fake, testStages, testStatuses)
	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "status", "quote_sent"))
	require.NoError(t, err)

	require.Len(t, fake.dealPatches, 1)
	assert.Equal(t, "102", fake.dealPatches[0][models.PropDealStage])
}

func TestJobHandler_FallbackJobID(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J9"] = &models.Job{UUID: "J9", QuoteSent: true}
	fake.dealByJob["J9"] = "D9"
	fake.deals["D9"] = map[string]string{models.PropDealStage: "100"}

	h := NewJobHandler(fake, testStages, testStatuses)
	event := models.Event{
		Type:    models.EventJob,
		Payload: models.EntryPayload{FallbackJobID: "J9"},
	}
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Len(t, fake.dealPatches, 1)
}

func TestJobHandler_MissingIdentity(t *testing.T) {
	fake := newFakeClients()
	h := NewJobHandler(fake, testStages, testStatuses)

	err := h.Handle(context.Background(), models.Event{
		Type:    models.EventJob,
		Payload: models.EntryPayload{},
	})
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Zero(t, fake.writes())
}

func TestJobHandler_UnrelatedFieldChange(t *testing.T) {
	fake := newFakeClients()
	h := NewJobHandler(fake, testStages, testStatuses)

	err := h.Handle(context.Background(), entryEvent(models.EventJob, "J1", "date"))
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Zero(t, fake.writes())
}
