// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez is a minimal client for the NCBI E-utilities esearch and
// efetch endpoints. Every request carries the contact email and tool name
// from the client's configuration; requests are paced but never retried.
package entrez

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-miner/internal/httputil"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

const (
	// DefaultBaseURL is the E-utilities endpoint prefix.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultTool is the tool name reported to NCBI.
	DefaultTool = "pubmed-miner"

	// DefaultTimeout is the HTTP client timeout when none is configured.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is sent when no User-Agent is configured.
	DefaultUserAgent = "pubmed-miner/0.1"
)

// ErrMissingContact is returned when a request is attempted without the
// contact email NCBI's usage policy requires.
var ErrMissingContact = errors.New("entrez: contact email is required")

// Client issues esearch and efetch requests. It holds no mutable identity:
// the contact email is fixed at construction.
type Client struct {
	cfg  types.EntrezConfig
	http *httputil.Pacer
}

// New creates a client for cfg. If httpClient is nil a client with
// cfg.Timeout is created. Zero-valued settings take the package defaults.
func New(cfg types.EntrezConfig, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Tool == "" {
		cfg.Tool = DefaultTool
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: httputil.NewPacer(httpClient, cfg.RateLimit, cfg.UserAgent),
	}
}

// Contact returns the email address sent with every request.
func (c *Client) Contact() string { return c.cfg.Email }

// Search runs esearch for q and returns the matching accession identifiers
// in the order the service ranks them. Date bounds are sent only when both
// are set; otherwise the date parameters are left out entirely.
func (c *Client) Search(ctx context.Context, q types.SearchQuery) ([]string, error) {
	params := url.Values{}
	params.Set("db", q.Database)
	params.Set("term", q.Term)
	params.Set("retmax", strconv.Itoa(q.MaxRecords))
	params.Set("idtype", "acc")
	params.Set("retmode", "xml")
	if q.HasDateRange() {
		params.Set("datetype", "pdat")
		params.Set("mindate", q.MinDate.Format(types.DateLayout))
		params.Set("maxdate", q.MaxDate.Format(types.DateLayout))
	}

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var result eSearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("esearch error: %s", strings.TrimSpace(result.Error))
	}

	ids := make([]string, 0, len(result.IDs))
	for _, id := range result.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FetchRecord runs efetch for one identifier and returns the raw XML document.
func (c *Client) FetchRecord(ctx context.Context, database, id string) ([]byte, error) {
	params := url.Values{}
	params.Set("db", database)
	params.Set("id", id)
	params.Set("retmode", "xml")
	return c.get(ctx, "efetch.fcgi", params)
}

// get sends one GET to endpoint with params plus the identity parameters
// and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.cfg.Email == "" {
		return nil, ErrMissingContact
	}
	params.Set("tool", c.cfg.Tool)
	params.Set("email", c.cfg.Email)

	resp, err := c.http.Get(ctx, c.cfg.BaseURL+"/"+endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

// StatusError reports a non-200 response from an E-utilities endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// eSearchResult is the subset of the esearch XML response we read.
type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	IDs     []string `xml:"IdList>Id"`
	Error   string   `xml:"ERROR"`
}
