package servicem8

import (
	"bytes"
	"strconv"
	"strings"

	"fieldsync/core/models"
)

// ServiceM8 encodes booleans as 0/1 (sometimes quoted) and amounts as
// strings, depending on the endpoint. The loose types absorb that.

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(string(bytes.Trim(data, `"`)))
	*b = looseBool(s == "1" || s == "true")
	return nil
}

type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = looseFloat(v)
	return nil
}

type jobRecord struct {
	UUID               string     `json:"uuid"`
	Status             string     `json:"status"`
	QuoteSent          looseBool  `json:"quote_sent"`
	QuoteDate          string     `json:"quote_date"`
	TotalInvoiceAmount looseFloat `json:"total_invoice_amount"`
}

func (r jobRecord) toModel() *models.Job {
	return &models.Job{
		UUID:               r.UUID,
		Status:             r.Status,
		QuoteSent:          bool(r.QuoteSent),
		QuoteDate:          r.QuoteDate,
		TotalInvoiceAmount: float64(r.TotalInvoiceAmount),
	}
}

type activityRecord struct {
	UUID         string    `json:"uuid"`
	JobUUID      string    `json:"job_uuid"`
	WasScheduled looseBool `json:"activity_was_scheduled"`
	StartDate    string    `json:"start_date"`
}

func (r activityRecord) toModel() *models.JobActivity {
	return &models.JobActivity{
		UUID:         r.UUID,
		JobUUID:      r.JobUUID,
		WasScheduled: bool(r.WasScheduled),
		StartDate:    r.StartDate,
	}
}

type proposalRecord struct {
	UUID                string `json:"uuid"`
	JobUUID             string `json:"job_uuid"`
	LastViewedTimestamp string `json:"last_viewed_timestamp"`
}
