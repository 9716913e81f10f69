// Package ballotfeed provides a client for a remote awards ballot feed.
//
// A feed publishes two JSON documents under its base URL: ballot.json with the
// categories and nominees, and winners.json with the declared results.
package ballotfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/awardpicks/internal/logger"
)

// FlexString is a string type that can be unmarshaled from either a string or a number.
// Feeds built from spreadsheets often emit numeric ids.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// Nominee is a nominee as published by the feed
type Nominee struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name"`
	Developer string     `json:"developer"`
	ImageURL  string     `json:"image_url"`
}

// Category is a category as published by the feed
type Category struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
	Nominees    []Nominee  `json:"nominees"`
}

// BallotResponse is the ballot.json document
type BallotResponse struct {
	Event      string     `json:"event"`
	Categories []Category `json:"categories"`
}

// WinnersResponse is the winners.json document. Values are left loosely typed:
// a bare nominee id or an object carrying one.
type WinnersResponse struct {
	Winners map[string]any `json:"winners"`
}

// Client defines the interface for ballot feed operations
type Client interface {
	// FetchBallot retrieves the published categories and nominees
	FetchBallot(ctx context.Context) (*BallotResponse, error)
	// FetchWinners retrieves the published official results
	FetchWinners(ctx context.Context) (map[string]any, error)
	// BaseURL returns the configured feed base URL
	BaseURL() string
	// SetBaseURL updates the feed base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for a ballot feed
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new feed client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// NewHTTPClientWithHTTPClient creates a new feed client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured feed base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the feed base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// getJSON fetches a document below the base URL and decodes it into response
func (c *HTTPClient) getJSON(ctx context.Context, name string, response interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("ballot feed URL not configured")
	}
	apiURL := c.baseURL + "/" + name

	c.log.Debug("Ballot feed request", "method", "GET", "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to ballot feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Ballot feed response", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ballot feed returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// FetchBallot retrieves the published categories and nominees
func (c *HTTPClient) FetchBallot(ctx context.Context) (*BallotResponse, error) {
	var resp BallotResponse
	if err := c.getJSON(ctx, "ballot.json", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchWinners retrieves the published official results
func (c *HTTPClient) FetchWinners(ctx context.Context) (map[string]any, error) {
	var resp WinnersResponse
	if err := c.getJSON(ctx, "winners.json", &resp); err != nil {
		return nil, err
	}
	if resp.Winners == nil {
		resp.Winners = map[string]any{}
	}
	return resp.Winners, nil
}

var _ Client = (*HTTPClient)(nil)
