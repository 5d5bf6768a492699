// Package logodev provides a best-effort client for the logo.dev image API
package logodev

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
)

const (
	DefaultBaseURL = "https://img.logo.dev"
	DefaultTimeout = 10 * time.Second
)

// Client implements the LogoClient interface
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new logo.dev client. An empty token is allowed; the
// provider then serves unauthenticated requests at a reduced rate.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetLogoURL checks whether the provider has an image for the identifier and
// returns its URL. A definitive "no image" answer is ("", nil); a non-nil
// error means the lookup failed and the answer is unknown.
func (c *Client) GetLogoURL(ctx context.Context, ticker string) (string, error) {
	imageURL := fmt.Sprintf("%s/ticker/%s", c.baseURL, url.PathEscape(ticker))
	if c.token != "" {
		imageURL += "?token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return imageURL, nil
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Debug().Str("ticker", ticker).Msg("No logo for ticker")
		return "", nil
	default:
		return "", fmt.Errorf("logo lookup for %s: status %d", ticker, resp.StatusCode)
	}
}

// Ensure Client implements LogoClient
var _ interfaces.LogoClient = (*Client)(nil)
