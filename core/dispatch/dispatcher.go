package dispatch

import (
	"fmt"
	"log/slog"

	"fieldsync/core/models"
)

// Dispatcher is the synchronous acceptance boundary. It normalizes a raw
// payload, resolves the bound handler and enqueues the pair; the caller only
// ever learns "accepted" or a validation rejection. Processing happens later
// on the worker and has no return channel.
type Dispatcher struct {
	registry *Registry
	queue    *Queue
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(registry *Registry, queue *Queue) *Dispatcher {
	return &Dispatcher{registry: registry, queue: queue}
}

// Submit accepts a raw webhook body, sniffing the object discriminator
func (d *Dispatcher) Submit(body map[string]interface{}) (models.Event, error) {
	event, err := Normalize(body)
	if err != nil {
		return models.Event{}, err
	}
	return d.enqueue(event)
}

// SubmitDirect accepts a raw body for a known event type, bypassing
// discriminator sniffing
func (d *Dispatcher) SubmitDirect(objectType models.EventType, body map[string]interface{}) (models.Event, error) {
	event, err := NormalizeAs(objectType, body)
	if err != nil {
		return models.Event{}, err
	}
	return d.enqueue(event)
}

func (d *Dispatcher) enqueue(event models.Event) (models.Event, error) {
	handler, ok := d.registry.Lookup(event.Type)
	if !ok {
		return models.Event{}, fmt.Errorf("no handler for object type %q: %w",
			event.Type, ErrUnrecognizedEventType)
	}

	d.queue.Enqueue(Item{Handler: handler, Event: event})
	slog.Info("Event queued", "event", event.ID, "type", event.Type, "depth", d.queue.Len())
	return event, nil
}
