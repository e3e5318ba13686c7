package grist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Grist server's REST API.
type Client struct {
	// serverURL is the server origin (e.g., "https://docs.getgrist.com")
	serverURL string
	// apiKey is sent as a bearer token
	apiKey string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// NewClient creates a new Grist client for the given server and API key.
// It configures a 30-second timeout for all requests.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs an authenticated request with an optional JSON body and decodes
// the JSON response into out when out is non-nil. Non-2xx responses become an
// error carrying the status and trimmed body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("grist: %s %s failed: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateDoc creates a new empty document in the workspace and returns its id.
func (c *Client) CreateDoc(ctx context.Context, workspaceID int64, name string) (string, error) {
	body := map[string]string{"name": name}
	var docID string
	path := fmt.Sprintf("/api/workspaces/%d/docs", workspaceID)
	if err := c.do(ctx, http.MethodPost, path, body, &docID); err != nil {
		return "", err
	}
	if docID == "" {
		return "", fmt.Errorf("grist: create doc returned an empty id")
	}
	return docID, nil
}

// AddTables creates the given tables in the document in one call and returns
// the created table ids in submission order.
func (c *Client) AddTables(ctx context.Context, docID string, tables []Table) ([]string, error) {
	body := map[string][]Table{"tables": tables}
	var out struct {
		Tables []struct {
			ID string `json:"id"`
		} `json:"tables"`
	}
	path := "/api/docs/" + docID + "/tables"
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	ids := make([]string, len(out.Tables))
	for i, t := range out.Tables {
		ids[i] = t.ID
	}
	if len(ids) != len(tables) {
		return nil, fmt.Errorf("grist: created %d tables, expected %d", len(ids), len(tables))
	}
	return ids, nil
}

// AddRecords bulk-inserts rows into a table. Each entry of records is the
// field map of one row; the API wrapper {"fields": ...} is applied here.
func (c *Client) AddRecords(ctx context.Context, docID, tableID string, records []RecordFields) error {
	type wrapped struct {
		Fields RecordFields `json:"fields"`
	}
	rows := make([]wrapped, len(records))
	for i, r := range records {
		rows[i] = wrapped{Fields: r}
	}
	body := map[string]any{"records": rows}
	path := "/api/docs/" + docID + "/tables/" + tableID + "/records"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// CheckAccess verifies that the API key is valid by listing the orgs
// visible to it.
func (c *Client) CheckAccess(ctx context.Context) error {
	var orgs []map[string]any
	return c.do(ctx, http.MethodGet, "/api/orgs", nil, &orgs)
}
