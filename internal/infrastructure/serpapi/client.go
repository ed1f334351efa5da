package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://serpapi.com"
	defaultEngine  = "google_shopping"
	defaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a provider response is read
	maxBodyBytes = 4 << 20

	// noResultsMarker is how SerpApi reports a successful search with nothing found
	noResultsMarker = "hasn't returned any results"
)

// Config holds SerpApi client settings
type Config struct {
	BaseURL      string
	Engine       string
	GoogleDomain string
	Country      string
	Language     string
	Timeout      time.Duration
}

// Client handles communication with the SerpApi search endpoint
type Client struct {
	httpClient *http.Client
	cfg        Config
	log        *logrus.Entry
	debug      bool
}

// NewClient creates a new SerpApi client. The HTTP timeout is always finite.
func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Engine == "" {
		cfg.Engine = defaultEngine
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
		log: logger.WithComponent(log, "serpapi"),
	}
}

// SetDebug toggles logging of every request and result count
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search runs one shopping search. No retries: a failed call is reported once.
func (c *Client) Search(ctx context.Context, request domain.SearchRequest) (*domain.ShoppingResponse, error) {
	if request.APIKey == "" {
		return nil, domain.ErrMissingCredential
	}

	if c.debug {
		c.log.WithFields(logrus.Fields{"query": request.Query, "num": request.Num}).Debug("search")
	}

	status, body, err := c.get(ctx, c.searchURL(request.Query, request.Num, request.APIKey))
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrTransportFailure, status, providerMessage(body))
	}

	searchResp, err := c.decodeSearch(body)
	if err != nil {
		return nil, err
	}

	if searchResp.Error != "" {
		if strings.Contains(searchResp.Error, noResultsMarker) {
			searchResp.ShoppingResults = nil
			return searchResp, nil
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrTransportFailure, searchResp.Error)
	}

	if c.debug {
		c.log.WithFields(logrus.Fields{
			"query":   request.Query,
			"results": len(searchResp.ShoppingResults),
		}).Debug("search complete")
	}

	return searchResp, nil
}

// searchEnvelope defers decoding of individual results so one malformed
// record does not discard the rest of the page
type searchEnvelope struct {
	SearchMetadata  domain.SearchMetadata `json:"search_metadata"`
	ShoppingResults []json.RawMessage     `json:"shopping_results"`
	Error           string                `json:"error,omitempty"`
}

func (c *Client) decodeSearch(body []byte) (*domain.ShoppingResponse, error) {
	var envelope searchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}

	searchResp := &domain.ShoppingResponse{
		SearchMetadata:  envelope.SearchMetadata,
		ShoppingResults: make([]domain.ShoppingResult, 0, len(envelope.ShoppingResults)),
		Error:           envelope.Error,
	}

	skipped := 0
	for _, raw := range envelope.ShoppingResults {
		var result domain.ShoppingResult
		if err := json.Unmarshal(raw, &result); err != nil {
			skipped++
			continue
		}
		searchResp.ShoppingResults = append(searchResp.ShoppingResults, result)
	}
	if skipped > 0 {
		c.log.WithFields(logrus.Fields{
			"skipped": skipped,
			"kept":    len(searchResp.ShoppingResults),
		}).Warn("dropped malformed shopping results")
	}

	return searchResp, nil
}

// VerifyKey issues a one-result probe search to check the key is accepted
func (c *Client) VerifyKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return domain.ErrMissingCredential
	}

	status, body, err := c.get(ctx, c.searchURL("test", 1, apiKey))
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", domain.ErrInvalidCredential, status, providerMessage(body))
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransportFailure, status, providerMessage(body))
	}
}

func (c *Client) searchURL(query string, num int, apiKey string) string {
	params := url.Values{}
	params.Add("engine", c.cfg.Engine)
	params.Add("q", query)
	params.Add("api_key", apiKey)
	if c.cfg.GoogleDomain != "" {
		params.Add("google_domain", c.cfg.GoogleDomain)
	}
	if c.cfg.Country != "" {
		params.Add("gl", c.cfg.Country)
	}
	if c.cfg.Language != "" {
		params.Add("hl", c.cfg.Language)
	}
	if num > 0 {
		params.Add("num", strconv.Itoa(num))
	}
	return fmt.Sprintf("%s/search.json?%s", c.cfg.BaseURL, params.Encode())
}

// get executes an HTTP GET and returns the status and (bounded) body
func (c *Client) get(ctx context.Context, reqURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrTransportFailure, err)
	}
	req.Header.Set("User-Agent", "ArbiLens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL including the key
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransportFailure, err)
	}

	return resp.StatusCode, body, nil
}

// providerMessage pulls the error text out of a SerpApi error body
func providerMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
