package surrealdb

import (
	"strings"
	"testing"

	"github.com/jwchung/apexrank/internal/models"
)

func TestCompanyUpsertStatement_SkipsEmptyFields(t *testing.T) {
	update := &models.CompanyUpdate{
		Ticker: "AAPL",
		Name:   "Apple Inc.",
		Sector: "Technology",
		// industry/country/currency/logo_url empty, not explicit
	}

	sql, vars := companyUpsertStatement(update, "c0")

	if !strings.Contains(sql, "name = $c0_name") {
		t.Errorf("expected name assignment, got %s", sql)
	}
	if !strings.Contains(sql, "sector = $c0_sector") {
		t.Errorf("expected sector assignment, got %s", sql)
	}
	for _, absent := range []string{"industry =", "country =", "currency =", "logo_url ="} {
		if strings.Contains(sql, absent) {
			t.Errorf("empty field must not be written: %q in %s", absent, sql)
		}
	}
	if vars["c0_ticker"] != "AAPL" {
		t.Errorf("expected ticker var, got %v", vars["c0_ticker"])
	}
	if _, ok := vars["c0_logo_url"]; ok {
		t.Error("no bind var expected for a skipped field")
	}
}

func TestCompanyUpsertStatement_ExplicitEmptyFieldIsWritten(t *testing.T) {
	update := &models.CompanyUpdate{
		Ticker:   "NVDA",
		Name:     "NVIDIA",
		LogoURL:  "",
		Explicit: []string{"logo_url"},
	}

	sql, vars := companyUpsertStatement(update, "c0")

	if !strings.Contains(sql, "logo_url = $c0_logo_url") {
		t.Errorf("explicit empty field must be written: %s", sql)
	}
	if v, ok := vars["c0_logo_url"]; !ok || v != "" {
		t.Errorf("expected empty logo_url bind, got %v", v)
	}
}

func TestCompanyUpsertStatement_PrefixesAreIsolated(t *testing.T) {
	a := &models.CompanyUpdate{Ticker: "AAPL", Name: "Apple Inc."}
	b := &models.CompanyUpdate{Ticker: "MSFT", Name: "Microsoft"}

	_, varsA := companyUpsertStatement(a, "c0")
	_, varsB := companyUpsertStatement(b, "c1")

	for k := range varsA {
		if _, clash := varsB[k]; clash {
			t.Errorf("bind variable %q collides across statements", k)
		}
	}
}

func TestCompanyUpsertStatement_AlwaysTouchesTimestamp(t *testing.T) {
	sql, _ := companyUpsertStatement(&models.CompanyUpdate{Ticker: "V"}, "c0")
	if !strings.Contains(sql, "updated_at = time::now()") {
		t.Errorf("expected updated_at assignment, got %s", sql)
	}
}
