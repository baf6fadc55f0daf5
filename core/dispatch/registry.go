package dispatch

import (
	"fieldsync/core/models"
	"fieldsync/core/reconcile"
)

// Registry binds each event type to the handler responsible for it. It is
// configuration, not logic: it is built once at startup and passed by
// reference, and different deployments may bind different handler variants
// to the same type.
type Registry struct {
	handlers map[models.EventType]reconcile.Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[models.EventType]reconcile.Handler)}
}

// Register binds a handler to an event type, replacing any previous binding
func (r *Registry) Register(t models.EventType, h reconcile.Handler) {
	r.handlers[t] = h
}

// Lookup resolves the handler for an event type
func (r *Registry) Lookup(t models.EventType) (reconcile.Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}
