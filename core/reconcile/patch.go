package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldsync/config"
	"fieldsync/core/models"
)

// formatPlatformDate converts a field-service datetime into an ISO date.
// The second return is false for the zero-date sentinel, empty values and
// anything unparseable; such values must never be propagated.
func formatPlatformDate(value string) (string, bool) {
	if value == "" || value == config.SentinelDate {
		return "", false
	}
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func statusEquals(status, want string) bool {
	return strings.EqualFold(strings.TrimSpace(status), want)
}

// advanceDealStage issues the single stage-change patch for a deal, after
// re-checking the deal is not already at the target stage. The re-check is
// what makes every stage-advance handler idempotent and safe against
// out-of-order replays.
func advanceDealStage(ctx context.Context, clients Clients, dealID, targetStage string, extra map[string]string) error {
	records, err := clients.BatchReadProperties(ctx, "deals", []string{dealID}, []string{models.PropDealStage})
	if err != nil {
		return fmt.Errorf("read deal %s stage: %w", dealID, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("deal %s: %w", dealID, ErrNotFound)
	}
	if records[0].Property(models.PropDealStage) == targetStage {
		return fmt.Errorf("deal %s already at stage %s: %w", dealID, targetStage, ErrGuardFailed)
	}

	properties := map[string]string{models.PropDealStage: targetStage}
	for k, v := range extra {
		properties[k] = v
	}
	return clients.PatchDealProperties(ctx, dealID, properties)
}
