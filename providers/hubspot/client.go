package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fieldsync/core/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("hubspot: record not found")

// Client is the HubSpot CRM REST client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new HubSpot client
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
	}
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string   `json:"propertyName"`
	Operator     string   `json:"operator"`
	Value        string   `json:"value,omitempty"`
	Values       []string `json:"values,omitempty"`
}

type searchResponse struct {
	Results []objectResult `json:"results"`
}

type objectResult struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// FindDealByJobID resolves the deal carrying the given job uuid in its
// cross-reference property. Returns ErrNotFound when no deal matches.
func (c *Client) FindDealByJobID(ctx context.Context, jobUUID string) (string, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: []filter{{
			PropertyName: models.PropJobID,
			Operator:     "EQ",
			Value:        jobUUID,
		}}}},
		Properties: []string{models.PropDealStage},
	}

	var resp searchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/deals/search", req, &resp); err != nil {
		return "", fmt.Errorf("search deal by job id %s: %w", jobUUID, err)
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("deal for job id %s: %w", jobUUID, ErrNotFound)
	}
	return resp.Results[0].ID, nil
}

// SearchDealsByJobIDs finds deals whose cross-reference property matches any
// of the given job uuids. The caller must keep each call within the search
// API's input-size limit; this method does not chunk.
func (c *Client) SearchDealsByJobIDs(ctx context.Context, jobUUIDs, properties []string) ([]models.PropertyRecord, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: []filter{{
			PropertyName: models.PropJobID,
			Operator:     "IN",
			Values:       jobUUIDs,
		}}}},
		Properties: properties,
	}

	var resp searchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/deals/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search deals by job ids: %w", err)
	}
	return toRecords(resp.Results), nil
}

// BatchReadProperties reads the named properties for a batch of object ids
func (c *Client) BatchReadProperties(ctx context.Context, objectType string, ids, properties []string) ([]models.PropertyRecord, error) {
	inputs := make([]map[string]string, len(ids))
	for i, id := range ids {
		inputs[i] = map[string]string{"id": id}
	}
	req := map[string]interface{}{
		"properties": properties,
		"inputs":     inputs,
	}

	var resp searchResponse
	path := "/crm/v3/objects/" + objectType + "/batch/read"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("batch read %s: %w", objectType, err)
	}
	return toRecords(resp.Results), nil
}

// PatchProperties writes a property patch onto one CRM object
func (c *Client) PatchProperties(ctx context.Context, objectType, id string, properties map[string]string) error {
	req := map[string]interface{}{"properties": properties}
	path := "/crm/v3/objects/" + objectType + "/" + id
	if err := c.doJSON(ctx, http.MethodPatch, path, req, nil); err != nil {
		return fmt.Errorf("patch %s %s: %w", objectType, id, err)
	}
	return nil
}

type associationsResponse struct {
	Results []struct {
		ToObjectID json.Number `json:"toObjectId"`
	} `json:"results"`
}

// AssociatedIDs lists the ids of records associated with the given object
func (c *Client) AssociatedIDs(ctx context.Context, fromType, fromID, toType string) ([]string, error) {
	path := "/crm/v4/objects/" + fromType + "/" + fromID + "/associations/" + toType

	var resp associationsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("associations %s %s -> %s: %w", fromType, fromID, toType, err)
	}

	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.ToObjectID.String()
	}
	return ids, nil
}

func toRecords(results []objectResult) []models.PropertyRecord {
	records := make([]models.PropertyRecord, len(results))
	for i, r := range results {
		records[i] = models.PropertyRecord{ID: r.ID, Properties: r.Properties}
	}
	return records
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("hubspot: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
