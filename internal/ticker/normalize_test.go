package ticker

import "testing"

func TestNormalize_RejectsSeparators(t *testing.T) {
	cases := []string{
		"SEPTEMBER 22, 2025",
		"SECTOR:.DE",
		"AIR PA",
		"A,B",
		"MT.AS.PA",
		"AIR.PA.DE",
	}
	for _, raw := range cases {
		if got, ok := Normalize(raw, "US"); ok {
			t.Errorf("Normalize(%q) = %q, want reject", raw, got)
		}
	}
}

func TestNormalize_CountrySuffixes(t *testing.T) {
	cases := []struct {
		raw     string
		country string
		want    string
	}{
		{"AAPL", "US", "AAPL"},
		{"BRK-B", "US", "BRK-B"},
		{"HSBA", "UK", "HSBA.L"},
		{"SAP", "Germany", "SAP.DE"},
		{"AIR", "France", "AIR.PA"},
		{"7203", "Japan", "7203.T"},
		{"700", "Hong Kong", "0700.HK"},
		{"5", "Hong Kong", "0005.HK"},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.raw, tc.country)
		if !ok {
			t.Errorf("Normalize(%q, %q) rejected, want %q", tc.raw, tc.country, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", tc.raw, tc.country, got, tc.want)
		}
	}
}

func TestNormalize_ChinaExchangeRouting(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"600519", "600519.SS"}, // leading 6 → Shanghai
		{"900901", "900901.SS"}, // leading 9 → Shanghai
		{"000001", "000001.SZ"}, // leading 0 → Shenzhen
		{"300750", "300750.SZ"}, // leading 3 → Shenzhen
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.raw, "China")
		if !ok || got != tc.want {
			t.Errorf("Normalize(%q, China) = %q, %v, want %q", tc.raw, got, ok, tc.want)
		}
	}

	// Unroutable leading digits and wrong lengths are dropped.
	for _, raw := range []string{"500000", "12345", "1234567"} {
		if got, ok := Normalize(raw, "China"); ok {
			t.Errorf("Normalize(%q, China) = %q, want reject", raw, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []struct {
		raw     string
		country string
	}{
		{"HSBA", "UK"},
		{"7203", "Japan"},
		{"700", "Hong Kong"},
		{"600519", "China"},
		{"SAP", "Germany"},
		{"AAPL", "US"},
	}
	for _, tc := range inputs {
		first, ok := Normalize(tc.raw, tc.country)
		if !ok {
			t.Fatalf("Normalize(%q, %q) rejected", tc.raw, tc.country)
		}
		second, ok := Normalize(first, tc.country)
		if !ok {
			t.Fatalf("Normalize(%q, %q) rejected on second pass", first, tc.country)
		}
		if second != first {
			t.Errorf("Normalize not idempotent: %q → %q → %q", tc.raw, first, second)
		}
	}
}

func TestNormalize_Denylist(t *testing.T) {
	cases := []struct {
		raw     string
		country string
	}{
		{"CONSTITUENTS", "US"}, // longer than any real ticker
		{"INDUSTRY", "US"},
		{"FTSE", "UK"},
		{"INC", "US"},
		{"LTD", "UK"},
		{"HANG", "Hong Kong"},
		{"NIKKEI", "Japan"},
		{"FTSE.L", "UK"}, // denylisted base keeps failing after suffixing
	}
	for _, tc := range cases {
		if got, ok := Normalize(tc.raw, tc.country); ok {
			t.Errorf("Normalize(%q, %q) = %q, want reject", tc.raw, tc.country, got)
		}
	}
}

func TestNormalize_LengthHeuristics(t *testing.T) {
	// Long pure-alphabetic tokens are page furniture, not tickers.
	if got, ok := Normalize("REFERENCES", "US"); ok {
		t.Errorf("Normalize(REFERENCES) = %q, want reject", got)
	}
	// Year-like and figure-like numerics without a numeric-code market.
	for _, raw := range []string{"2025", "13000"} {
		for _, country := range []string{"US", "UK", "Germany"} {
			if got, ok := Normalize(raw, country); ok {
				t.Errorf("Normalize(%q, %q) = %q, want reject", raw, country, got)
			}
		}
	}
	// But a 4-digit code from a numeric-convention market is real.
	if got, ok := Normalize("9984", "Japan"); !ok || got != "9984.T" {
		t.Errorf("Normalize(9984, Japan) = %q, %v, want 9984.T", got, ok)
	}
}

func TestNormalize_UnknownSuffixArtifact(t *testing.T) {
	if got, ok := Normalize("AAPL.XYZ", "US"); ok {
		t.Errorf("Normalize(AAPL.XYZ) = %q, want reject", got)
	}
}
