package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL serves the exchangerate-api.com v4 "latest" endpoint.
	DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
	// SourceName is reported alongside converted figures.
	SourceName = "exchangerate-api.com"

	maxBodyBytes = 1 << 20
)

// RateSource returns a fresh snapshot of rates quoted against its base currency.
type RateSource interface {
	Latest(ctx context.Context) (*Snapshot, error)
	Base() string
}

// Client fetches snapshots from an exchangerate-api.com compatible feed.
// It keeps no cache: each Latest call performs one request.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	base       string
	timeout    time.Duration
}

// NewClient creates a Client quoting rates against base. A zero timeout leaves
// the deadline to httpClient and the caller's context.
func NewClient(httpClient *http.Client, baseURL, base string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		base:       strings.ToUpper(base),
		timeout:    timeout,
	}
}

// Base returns the currency every snapshot is quoted against.
func (c *Client) Base() string {
	return c.base
}

type latestResponse struct {
	Base            string             `json:"base"`
	Date            string             `json:"date"`
	TimeLastUpdated int64              `json:"time_last_updated"`
	Rates           map[string]float64 `json:"rates"`
}

// Latest fetches the current rates. Transport failures, timeouts and non-200
// answers wrap ErrUnavailable; unusable payloads wrap ErrMalformed.
func (c *Client) Latest(ctx context.Context) (*Snapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := c.baseURL + "/" + c.base
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrMalformed, err)
	}

	return c.snapshot(body)
}

func (c *Client) snapshot(body latestResponse) (*Snapshot, error) {
	if body.Base == "" {
		return nil, fmt.Errorf("%w: missing base", ErrMalformed)
	}
	if !strings.EqualFold(body.Base, c.base) {
		return nil, fmt.Errorf("%w: base %s, want %s", ErrMalformed, body.Base, c.base)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates", ErrMalformed)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for code, v := range body.Rates {
		if v <= 0 {
			return nil, fmt.Errorf("%w: non-positive rate %f for %s", ErrMalformed, v, code)
		}
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(v)
	}

	return &Snapshot{
		Base:      c.base,
		Rates:     rates,
		Date:      body.Date,
		FetchedAt: time.Now().UTC(),
		Source:    SourceName,
	}, nil
}
