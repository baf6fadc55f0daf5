package reconcile

import (
	"context"
	"testing"

	"fieldsync/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLostJobHandler_MarksUnsuccessful(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", Status: "Quote"}

	h := NewLostJobHandler(fake, testStatuses)
	err := h.Handle(context.Background(), models.Event{
		Type:    models.EventLostJob,
		Payload: models.LostJobPayload{JobUUID: "J1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"J1=Unsuccessful"}, fake.statusWrites)
}

func TestLostJobHandler_AlreadyUnsuccessful(t *testing.T) {
	fake := newFakeClients()
	fake.jobs["J1"] = &models.Job{UUID: "J1", Status: "Unsuccessful"}

	h := NewLostJobHandler(fake, testStatuses)
	err := h.Handle(context.Background(), models.Event{
		Type:    models.EventLostJob,
		Payload: models.LostJobPayload{JobUUID: "J1"},
	})
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Zero(t, fake.writes())
}

func TestLostJobHandler_MissingIdentity(t *testing.T) {
	fake := newFakeClients()
	h := NewLostJobHandler(fake, testStatuses)

	err := h.Handle(context.Background(), models.Event{
		Type:    models.EventLostJob,
		Payload: models.LostJobPayload{},
	})
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Zero(t, fake.writes())
}
