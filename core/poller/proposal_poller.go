package poller

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fieldsync/config"
	"fieldsync/core/models"
	"fieldsync/core/reconcile"
)

// ProposalPoller is the time-driven sweep that catches quote views the event
// stream has no webhook for. It shares the guard-before-write discipline
// with the handlers: every sweep re-derives "should I write" from fresh
// remote state, so overlapping windows and concurrent queued events are
// harmless.
type ProposalPoller struct {
	clients   reconcile.Clients
	stage     string
	interval  time.Duration
	window    time.Duration
	chunkSize int
	stopChan  chan struct{}

	now func() time.Time
}

// NewProposalPoller creates a new proposal poller
func NewProposalPoller(clients reconcile.Clients, cfg *config.Config) *ProposalPoller {
	return &ProposalPoller{
		clients:   clients,
		stage:     cfg.Stages.QuoteViewed,
		interval:  cfg.PollInterval,
		window:    cfg.PollWindow,
		chunkSize: cfg.SearchChunkSize,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
}

// Start runs the sweep loop until ctx is done or Stop is called
func (p *ProposalPoller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// Stop stops the poller
func (p *ProposalPoller) Stop() {
	close(p.stopChan)
}

// sweep reconciles all proposals viewed inside the lookback window. The
// window exceeds the tick interval so consecutive sweeps overlap; the
// already-viewed guard below makes the overlap idempotent.
func (p *ProposalPoller) sweep(ctx context.Context) {
	since := p.now().UTC().Add(-p.window)
	proposals, err := p.clients.ListRecentProposals(ctx, since)
	if err != nil {
		slog.Error("Failed to fetch recent proposals", "error", err)
		return
	}

	jobIDs := viewedJobIDs(proposals)
	if len(jobIDs) == 0 {
		return
	}
	slog.Info("Found viewed proposals", "count", len(jobIDs))

	updated := 0
	properties := []string{models.PropJobID, models.PropQuoteViewed}
	for start := 0; start < len(jobIDs); start += p.chunkSize {
		end := min(start+p.chunkSize, len(jobIDs))
		records, err := p.clients.SearchDealsByJobIDs(ctx, jobIDs[start:end], properties)
		if err != nil {
			slog.Error("Deal search failed", "error", err)
			continue
		}
		updated += p.markViewed(ctx, records)
	}
	if updated > 0 {
		slog.Info("Marked deals quote viewed", "count", updated, "stage", p.stage)
	}
}

// markViewed writes the quote-viewed stage onto each resolved deal that is
// not already marked, one patch per deal.
func (p *ProposalPoller) markViewed(ctx context.Context, records []models.PropertyRecord) int {
	updated := 0
	for _, rec := range records {
		if strings.EqualFold(rec.Property(models.PropQuoteViewed), "true") {
			continue
		}
		patch := map[string]string{
			models.PropDealStage:   p.stage,
			models.PropQuoteViewed: "true",
		}
		if err := p.clients.PatchDealProperties(ctx, rec.ID, patch); err != nil {
			slog.Error("Failed to mark deal quote viewed", "deal", rec.ID, "error", err)
			continue
		}
		updated++
	}
	return updated
}

// viewedJobIDs filters the sweep result down to job ids whose proposal has a
// real viewed timestamp. The zero-date sentinel means "never viewed".
func viewedJobIDs(proposals []models.Proposal) []string {
	var ids []string
	for _, proposal := range proposals {
		ts := proposal.LastViewedTimestamp
		if ts == "" || ts == config.SentinelDate || proposal.JobUUID == "" {
			continue
		}
		ids = append(ids, proposal.JobUUID)
	}
	return ids
}
