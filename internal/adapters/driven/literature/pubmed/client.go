// Package pubmed provides a LiteratureSource backed by NCBI E-utilities.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.LiteratureSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTimeout = 30 * time.Second
	DefaultMaxHits = 100

	// NCBI allows 3 requests per second without an API key and 10 with one.
	anonymousRate = 3
	keyedRate     = 10
)

// Config holds configuration for the PubMed client.
type Config struct {
	// BaseURL is the E-utilities base URL.
	BaseURL string

	// APIKey raises the NCBI rate limit when set.
	APIKey string

	// Email identifies the caller to NCBI.
	Email string

	// Timeout is the HTTP client timeout (default: 30s).
	Timeout time.Duration

	// MaxHits bounds the ids returned per search (default: 100).
	MaxHits int

	// RequestsPerSecond overrides the NCBI rate limit.
	RequestsPerSecond float64
}

// Client searches PubMed.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	email   string
	maxHits int
	limiter *rate.Limiter
}

// esearchResponse is the esearch JSON response format. Only the returned
// ids are read; a search yields at most MaxHits citations.
type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
	Error string `json:"error,omitempty"`
}

// NewClient creates a new PubMed client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxHits == 0 {
		cfg.MaxHits = DefaultMaxHits
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = anonymousRate
		if cfg.APIKey != "" {
			cfg.RequestsPerSecond = keyedRate
		}
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		email:   cfg.Email,
		maxHits: cfg.MaxHits,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return "pubmed"
}

// Search returns PubMed ids matching the query. Relevance decreases with
// the rank PubMed assigns.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Citation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(c.maxHits))
	params.Set("sort", "relevance")
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if c.email != "" {
		params.Set("email", c.email)
		params.Set("tool", "pathscout")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/esearch.fcgi?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var body esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Error != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	ids := body.Result.IDList
	if len(ids) > c.maxHits {
		ids = ids[:c.maxHits]
	}
	out := make([]domain.Citation, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.Citation{
			ID:        "PMID:" + id,
			Relevance: 1 - float64(i)/float64(len(ids)),
		})
	}
	return out, nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		rerr := &RateLimitError{}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			rerr.RetryAfter = time.Duration(secs) * time.Second
		}
		return rerr
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read response"}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
}
