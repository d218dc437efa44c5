// Implements the Notion API client with rate limiting.

package notion

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

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersion is the pinned Notion API version.
	APIVersion = "2022-06-28"
	// RequestsPerSecond is Notion's documented average request rate.
	RequestsPerSecond = 3
	// PageSize is the page size requested on every paginated call.
	PageSize = 100
)

// Options configures a Client. The zero value is valid.
type Options struct {
	// BaseURL overrides the API endpoint. Defaults to BaseURL.
	BaseURL string
	// APIVersion overrides the Notion-Version header. Defaults to APIVersion.
	APIVersion string
	// RequestsPerSecond bounds the request rate. Zero means
	// RequestsPerSecond, negative disables throttling.
	RequestsPerSecond float64
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration
	// Transport is the base round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client is a rate-limited Notion API client.
//
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Notion API client authenticating with token.
func NewClient(token string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	c := &Client{
		baseURL: opts.BaseURL,
		version: opts.APIVersion,
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL
	}
	if c.version == "" {
		c.version = APIVersion
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rps := opts.RequestsPerSecond
	switch {
	case rps == 0:
		c.limiter = rate.NewLimiter(RequestsPerSecond, 1)
	case rps < 0:
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	default:
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	c.httpClient = &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   opts.Transport,
		},
	}
	return c
}

// do performs an HTTP request with rate limiting.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr Error
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return nil, &apiErr
	}

	return respBody, nil
}

// QueryOptions defines options for querying a database.
type QueryOptions struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// Sort defines a sort order for database queries.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // "created_time" or "last_edited_time"
	Direction string `json:"direction"`           // "ascending" or "descending"
}

// QueryDatabase queries a database for one page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, opts *QueryOptions) (*QueryResponse, error) {
	if opts == nil {
		opts = &QueryOptions{}
	}
	if opts.PageSize == 0 {
		opts.PageSize = PageSize
	}

	data, err := c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(databaseID)+"/query", opts)
	if err != nil {
		return nil, err
	}

	var resp QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return &resp, nil
}

// QueryDatabaseAll queries all pages in a database, following continuation
// cursors until the service reports no further pages.
//
// Requests are strictly sequential. Any failure aborts the whole walk and no
// partial result is returned.
func (c *Client) QueryDatabaseAll(ctx context.Context, databaseID string, opts *QueryOptions) ([]Page, error) {
	var pages []Page
	var cursor string

	for n := 1; ; n++ {
		reqOpts := &QueryOptions{
			PageSize: PageSize,
		}
		if opts != nil {
			reqOpts.Filter = opts.Filter
			reqOpts.Sorts = opts.Sorts
		}
		reqOpts.StartCursor = cursor

		resp, err := c.QueryDatabase(ctx, databaseID, reqOpts)
		if err != nil {
			return nil, fmt.Errorf("query %s (request %d): %w", databaseID, n, err)
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return pages, nil
}

// GetPage retrieves a page by ID.
func (c *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	if id == "" {
		return nil, errors.New("page id is required")
	}
	data, err := c.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

// UpdatePageProperties patches the given properties of a page and returns
// the updated page. Properties not named in props are left untouched.
func (c *Client) UpdatePageProperties(ctx context.Context, id string, props map[string]PropertyPatch) (*Page, error) {
	if id == "" {
		return nil, errors.New("page id is required")
	}
	if len(props) == 0 {
		return nil, errors.New("at least one property is required")
	}
	data, err := c.do(ctx, http.MethodPatch, "/pages/"+url.PathEscape(id), &updatePageRequest{Properties: props})
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}
	return &page, nil
}

// ListUsers retrieves one page of the users visible to the integration.
func (c *Client) ListUsers(ctx context.Context, cursor string) (*UsersResponse, error) {
	q := url.Values{}
	q.Set("page_size", fmt.Sprint(PageSize))
	if cursor != "" {
		q.Set("start_cursor", cursor)
	}

	data, err := c.do(ctx, http.MethodGet, "/users?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp UsersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse users response: %w", err)
	}
	return &resp, nil
}

// ListUsersAll retrieves all users visible to the integration, handling
// pagination.
func (c *Client) ListUsersAll(ctx context.Context) ([]User, error) {
	var users []User
	var cursor string

	for {
		resp, err := c.ListUsers(ctx, cursor)
		if err != nil {
			return nil, err
		}

		users = append(users, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return users, nil
}
