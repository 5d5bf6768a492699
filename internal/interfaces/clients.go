// Package interfaces defines service contracts for Apexrank
package interfaces

import (
	"context"
	"errors"

	"github.com/jwchung/apexrank/internal/models"
)

// ErrNoData is returned by clients when the provider answered but has no data
// for the requested identifier or pair. It is an expected outcome, not an
// infrastructure failure; callers drop the candidate and continue.
var ErrNoData = errors.New("no data")

// QuoteClient provides access to the market-data provider.
type QuoteClient interface {
	// GetQuotes retrieves fast-path quotes for a batch of identifiers.
	// Identifiers the provider has no data for are absent from the result;
	// that is not an error.
	GetQuotes(ctx context.Context, tickers []string) (map[string]*models.Quote, error)

	// GetProfile retrieves the detailed-path profile for one identifier.
	// Returns ErrNoData when the provider has nothing for it.
	GetProfile(ctx context.Context, ticker string) (*models.Profile, error)

	// GetFXRate retrieves the quoted rate for a currency pair symbol
	// (e.g. "EURUSD=X"). Returns ErrNoData when the pair is not quoted.
	GetFXRate(ctx context.Context, pair string) (float64, error)
}

// PageFetcher retrieves raw page content for the harvester. Errors from a
// fetcher must never propagate past the harvester's per-source boundary.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LogoClient provides best-effort company logo lookup.
type LogoClient interface {
	// GetLogoURL returns the logo URL for an identifier, or ("", nil) when
	// the provider has no image. A non-nil error means the lookup itself
	// failed and the answer is unknown.
	GetLogoURL(ctx context.Context, ticker string) (string, error)
}

// AIClient generates text content from a prompt. Treated as an opaque
// asynchronous function by the core.
type AIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
