package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fieldsync/api/rest/routes"
	"fieldsync/config"
	"fieldsync/core/dispatch"
	"fieldsync/core/models"
	"fieldsync/core/poller"
	"fieldsync/core/reconcile"
	"fieldsync/logging"
	"fieldsync/providers/hubspot"
	"fieldsync/providers/servicem8"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logging.Initialize(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize platform clients
	sm8 := servicem8.NewClient(cfg.ServiceM8BaseURL, cfg.ServiceM8APIKey, cfg.HTTPTimeout)
	hs := hubspot.NewClient(cfg.HubSpotBaseURL, cfg.HubSpotToken, cfg.HTTPTimeout)
	remote := reconcile.NewRemote(sm8, hs)

	// Bind handlers
	registry := dispatch.NewRegistry()
	registry.Register(models.EventJob, reconcile.NewJobHandler(remote, cfg.Stages, cfg.Statuses))
	registry.Register(models.EventJobActivity, reconcile.NewJobActivityHandler(remote, cfg.Stages, cfg.Statuses))
	registry.Register(models.EventCreateJob, reconcile.NewCreateJobHandler(remote, cfg.Stages, cfg.Statuses))
	registry.Register(models.EventQuoteAccepted, reconcile.NewQuoteAcceptedHandler(remote, cfg.Stages, cfg.Statuses))
	registry.Register(models.EventLostJob, reconcile.NewLostJobHandler(remote, cfg.Statuses))

	// Start dispatch queue and worker
	queue := dispatch.NewQueue(cfg.QueueCapacityHint)
	worker := dispatch.NewWorker(queue)
	go worker.Start(ctx)
	defer worker.Stop()

	// Start proposal poller
	proposalPoller := poller.NewProposalPoller(remote, cfg)
	go proposalPoller.Start(ctx)
	defer proposalPoller.Stop()

	dispatcher := dispatch.NewDispatcher(registry, queue)

	// Setup routes
	r := mux.NewRouter()
	routes.SetupRoutes(r, dispatcher)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	slog.Info("Server exited")
}
