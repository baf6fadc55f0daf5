package models

// Deal property names used across handlers and the poller.
const (
	PropDealStage        = "dealstage"
	PropJobID            = "sm8_job_id"
	PropClientID         = "sm8_client_id"
	PropQuoteViewed      = "sm8_quote_viewed"
	PropQuoteDate        = "quote_date"
	PropAmount           = "amount"
	PropConsultVisitDate = "consult_visit_date"
)

// PropertyRecord is one object returned by a CRM batch read or search:
// the record id plus the requested property subset.
type PropertyRecord struct {
	ID         string
	Properties map[string]string
}

// Property returns the named property or "" when absent.
func (r PropertyRecord) Property(name string) string {
	return r.Properties[name]
}
