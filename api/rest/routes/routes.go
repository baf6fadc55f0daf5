package routes

import (
	"fieldsync/api/rest/handlers"
	"fieldsync/core/dispatch"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, dispatcher *dispatch.Dispatcher) {
	webhook := handlers.NewWebhookHandler(dispatcher)

	r.HandleFunc("/webhook", webhook.Receive).Methods("POST")
	r.HandleFunc("/job/create", webhook.CreateJob).Methods("POST")
}
