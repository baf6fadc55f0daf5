package servicem8

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fieldsync/core/models"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("servicem8: record not found")

// Client is the ServiceM8 REST client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new ServiceM8 client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// GetJob fetches a job by uuid
func (c *Client) GetJob(ctx context.Context, uuid string) (*models.Job, error) {
	var rec jobRecord
	if err := c.getJSON(ctx, "/job/"+uuid+".json", &rec); err != nil {
		return nil, fmt.Errorf("get job %s: %w", uuid, err)
	}
	return rec.toModel(), nil
}

// GetJobActivity fetches a job activity by uuid
func (c *Client) GetJobActivity(ctx context.Context, uuid string) (*models.JobActivity, error) {
	var rec activityRecord
	if err := c.getJSON(ctx, "/jobactivity/"+uuid+".json", &rec); err != nil {
		return nil, fmt.Errorf("get job activity %s: %w", uuid, err)
	}
	return rec.toModel(), nil
}

// CreateJob creates a job and returns the uuid assigned by the platform.
// ServiceM8 reports the new record's uuid in the x-record-uuid response
// header, not the body.
func (c *Client) CreateJob(ctx context.Context, job models.NewJob) (string, error) {
	payload := map[string]interface{}{
		"status":          job.Status,
		"job_address":     job.Address,
		"job_description": job.Description,
		"date":            job.Date,
	}
	uuid, err := c.postForUUID(ctx, "/job.json", payload)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return uuid, nil
}

// SetJobStatus writes a single status transition onto a job
func (c *Client) SetJobStatus(ctx context.Context, uuid, status string) error {
	payload := map[string]interface{}{"status": status}
	if _, err := c.postForUUID(ctx, "/job/"+uuid+".json", payload); err != nil {
		return fmt.Errorf("set job %s status %q: %w", uuid, status, err)
	}
	return nil
}

// CreateClient creates a client (company) record and returns its uuid
func (c *Client) CreateClient(ctx context.Context, name string) (string, error) {
	payload := map[string]interface{}{"name": name}
	uuid, err := c.postForUUID(ctx, "/company.json", payload)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}
	return uuid, nil
}

// CreateJobContact attaches a primary contact to a job
func (c *Client) CreateJobContact(ctx context.Context, jobUUID string, contact models.Contact) error {
	payload := map[string]interface{}{
		"job_uuid":           jobUUID,
		"first":              contact.FirstName,
		"last":               contact.LastName,
		"phone":              contact.Phone,
		"email":              contact.Email,
		"type":               "JOB",
		"is_primary_contact": 1,
	}
	if _, err := c.postForUUID(ctx, "/jobcontact.json", payload); err != nil {
		return fmt.Errorf("create job contact for %s: %w", jobUUID, err)
	}
	return nil
}

// ListRecentProposals fetches proposals whose viewed timestamp changed after
// the given instant
func (c *Client) ListRecentProposals(ctx context.Context, since time.Time) ([]models.Proposal, error) {
	filter := fmt.Sprintf("last_viewed_timestamp gt '%s'", since.UTC().Format(time.RFC3339))
	path := "/proposal.json?$filter=" + url.QueryEscape(filter)

	var recs []proposalRecord
	if err := c.getJSON(ctx, path, &recs); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	proposals := make([]models.Proposal, len(recs))
	for i, rec := range recs {
		proposals[i] = models.Proposal{
			UUID:                rec.UUID,
			JobUUID:             rec.JobUUID,
			LastViewedTimestamp: rec.LastViewedTimestamp,
		}
	}
	return proposals, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postForUUID(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if err := checkStatus(resp); err != nil {
		return "", err
	}
	return resp.Header.Get("x-record-uuid"), nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("servicem8: unexpected status %d", resp.StatusCode)
	}
	return nil
}
