package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Airtable API origin.
const DefaultBaseURL = "https://api.airtable.com"

// Client talks to the Airtable REST API.
// Base schemas are cached in memory so that per-table lookups during a
// migration cost a single metadata request per base.
type Client struct {
	// baseURL is the API origin (e.g., "https://api.airtable.com")
	baseURL string
	// apiKey is the personal access token sent as a bearer token
	apiKey string
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// schemaCache stores the table list of each base already fetched
	schemaCache map[string][]Table
}

// NewClient creates a new Airtable client with the given API key.
// It configures a 30-second timeout for all requests.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, apiKey)
}

// NewClientWithBaseURL creates a client against a non-default origin.
// Used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 30 * time.Second},
		schemaCache: make(map[string][]Table),
	}
}

// get performs an authenticated GET and decodes the JSON response into out.
// Non-2xx responses become an error carrying the status and trimmed body.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("airtable: GET %s failed: %d %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BaseSchema returns the schema of every table in the base, in base order.
// The response is cached for the lifetime of the client.
func (c *Client) BaseSchema(ctx context.Context, baseID string) ([]Table, error) {
	if tables, ok := c.schemaCache[baseID]; ok {
		return tables, nil
	}
	var out struct {
		Tables []Table `json:"tables"`
	}
	if err := c.get(ctx, "/v0/meta/bases/"+url.PathEscape(baseID)+"/tables", nil, &out); err != nil {
		return nil, err
	}
	c.schemaCache[baseID] = out.Tables
	return out.Tables, nil
}

// TableSchema returns the schema of one table, identified by id or name.
func (c *Client) TableSchema(ctx context.Context, baseID, tableID string) (Table, error) {
	tables, err := c.BaseSchema(ctx, baseID)
	if err != nil {
		return Table{}, err
	}
	for _, t := range tables {
		if t.ID == tableID || t.Name == tableID {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("airtable: table %q not found in base %q", tableID, baseID)
}

// ListRecords returns every record of a table, following offset pagination
// until the API stops returning an offset. Record order is the API's view
// order, preserved across pages.
func (c *Client) ListRecords(ctx context.Context, baseID, tableID string) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		query := url.Values{}
		if offset != "" {
			query.Set("offset", offset)
		}
		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		path := "/v0/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableID)
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// Whoami verifies that the API key is valid by calling the whoami endpoint.
func (c *Client) Whoami(ctx context.Context) error {
	var out struct {
		ID string `json:"id"`
	}
	return c.get(ctx, "/v0/meta/whoami", nil, &out)
}
