package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/models"
)

// CompanyStore manages entity master records.
type CompanyStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewCompanyStore(db *surrealdb.DB, logger *common.Logger) *CompanyStore {
	return &CompanyStore{db: db, logger: logger}
}

// GetCompany retrieves one entity by canonical identifier. Returns (nil, nil)
// when the entity is unknown.
func (s *CompanyStore) GetCompany(ctx context.Context, ticker string) (*models.Company, error) {
	data, err := surrealdb.Select[models.Company](ctx, s.db, surrealmodels.NewRecordID("company", ticker))
	if err != nil {
		return nil, fmt.Errorf("failed to select company %s: %w", ticker, err)
	}
	if data == nil || data.Ticker == "" {
		return nil, nil
	}
	return data, nil
}

// GetCompanies retrieves entities for a batch of identifiers. Unknown
// identifiers are simply absent from the result.
func (s *CompanyStore) GetCompanies(ctx context.Context, tickers []string) ([]*models.Company, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	sql := "SELECT * FROM company WHERE ticker IN $tickers"
	vars := map[string]any{"tickers": tickers}

	results, err := surrealdb.Query[[]models.Company](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get companies: %w", err)
	}

	var companies []*models.Company
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			companies = append(companies, &(*results)[0].Result[i])
		}
	}
	return companies, nil
}

// UpsertCompany applies one update with preserve-on-null semantics: empty
// incoming fields leave the stored value untouched unless listed in the
// update's Explicit set.
func (s *CompanyStore) UpsertCompany(ctx context.Context, update *models.CompanyUpdate) error {
	sql, vars := companyUpsertStatement(update, "c")
	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", update.Ticker, err)
	}
	return nil
}

// companyUpsertStatement builds one UPSERT ... SET statement that only touches
// the fields the update actually carries. An empty field is included only when
// explicitly part of the run's payload, so a transient provider failure never
// erases a previously known value. Variable names are prefixed so multiple
// statements can share one transaction's bind set.
func companyUpsertStatement(update *models.CompanyUpdate, prefix string) (string, map[string]any) {
	vars := map[string]any{
		prefix + "_ticker": update.Ticker,
	}

	var set strings.Builder
	fmt.Fprintf(&set, "UPSERT type::thing('company', $%s_ticker) SET ticker = $%s_ticker, updated_at = time::now()", prefix, prefix)

	fields := []struct {
		column string
		value  string
	}{
		{"name", update.Name},
		{"sector", update.Sector},
		{"industry", update.Industry},
		{"country", update.Country},
		{"currency", update.Currency},
		{"logo_url", update.LogoURL},
	}
	for _, f := range fields {
		if f.value == "" && !update.IsExplicit(f.column) {
			continue
		}
		key := fmt.Sprintf("%s_%s", prefix, f.column)
		fmt.Fprintf(&set, ", %s = $%s", f.column, key)
		vars[key] = f.value
	}

	return set.String(), vars
}
