// Package quotes provides a client for the Yahoo-compatible quote API
package quotes

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

	"golang.org/x/time/rate"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
	"github.com/jwchung/apexrank/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// rawValue is the wrapped numeric shape used by the summary endpoint:
// {"raw": 123.4, "fmt": "123.40"}. A missing or null raw means no data.
type rawValue struct {
	Raw *flexFloat64 `json:"raw"`
}

func (v rawValue) ptr() *float64 {
	if v.Raw == nil {
		return nil
	}
	f := float64(*v.Raw)
	return &f
}

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new quote API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Quote API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return interfaces.ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type quoteResult struct {
	Symbol             string       `json:"symbol"`
	Currency           string       `json:"currency"`
	MarketCap          *flexFloat64 `json:"marketCap"`
	RegularMarketPrice *flexFloat64 `json:"regularMarketPrice"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult   `json:"result"`
		Error  json.RawMessage `json:"error"`
	} `json:"quoteResponse"`
}

// GetQuotes retrieves fast-path quotes for a batch of identifiers. Identifiers
// the provider does not know are simply absent from the result map.
func (c *Client) GetQuotes(ctx context.Context, tickers []string) (map[string]*models.Quote, error) {
	if len(tickers) == 0 {
		return map[string]*models.Quote{}, nil
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(tickers, ","))

	var resp quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]*models.Quote, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		if r.Symbol == "" {
			continue
		}
		out[r.Symbol] = &models.Quote{
			Ticker:    r.Symbol,
			MarketCap: flexPtr(r.MarketCap),
			Price:     flexPtr(r.RegularMarketPrice),
			Currency:  r.Currency,
		}
	}

	c.logger.Debug().Int("requested", len(tickers)).Int("returned", len(out)).Msg("Quote batch returned")
	return out, nil
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
				Country  string `json:"country"`
			} `json:"assetProfile"`
			Price struct {
				Symbol              string   `json:"symbol"`
				LongName            string   `json:"longName"`
				ShortName           string   `json:"shortName"`
				Currency            string   `json:"currency"`
				MarketCap           rawValue `json:"marketCap"`
				RegularMarketPrice  rawValue `json:"regularMarketPrice"`
				RegularMarketVolume rawValue `json:"regularMarketVolume"`
			} `json:"price"`
		} `json:"result"`
		Error json.RawMessage `json:"error"`
	} `json:"quoteSummary"`
}

// GetProfile retrieves the detailed-path profile for one identifier. Returns
// ErrNoData when the provider has nothing for it.
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.Profile, error) {
	params := url.Values{}
	params.Set("modules", "assetProfile,price")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))

	var resp summaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if len(resp.QuoteSummary.Result) == 0 {
		return nil, interfaces.ErrNoData
	}
	r := resp.QuoteSummary.Result[0]

	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	profile := &models.Profile{
		Ticker:    ticker,
		Name:      name,
		Sector:    r.AssetProfile.Sector,
		Industry:  r.AssetProfile.Industry,
		Country:   r.AssetProfile.Country,
		Currency:  r.Price.Currency,
		MarketCap: r.Price.MarketCap.ptr(),
		Price:     r.Price.RegularMarketPrice.ptr(),
	}
	if v := r.Price.RegularMarketVolume.ptr(); v != nil {
		profile.Volume = int64(*v)
	}

	return profile, nil
}

// GetFXRate retrieves the quoted rate for a currency pair symbol such as
// "EURUSD=X". Returns ErrNoData when the pair is not quoted.
func (c *Client) GetFXRate(ctx context.Context, pair string) (float64, error) {
	quotes, err := c.GetQuotes(ctx, []string{pair})
	if err != nil {
		return 0, err
	}

	q, ok := quotes[pair]
	if !ok || q.Price == nil || *q.Price <= 0 {
		return 0, interfaces.ErrNoData
	}
	return *q.Price, nil
}

func flexPtr(f *flexFloat64) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
