// Package ticker canonicalizes raw exchange-listing symbols into resolvable
// identifiers. It is pure: no I/O, no state.
package ticker

import (
	"strings"
	"unicode"
)

// knownSuffixes are exchange suffixes a symbol may already carry. A symbol
// ending in one of these is treated as already canonical: no suffix is added
// and only the base part is re-validated, so Normalize is idempotent.
var knownSuffixes = []string{
	".L", ".T", ".DE", ".PA", ".HK", ".SS", ".SZ", ".AS", ".MI", ".SW", ".TO", ".AX",
}

// countrySuffix maps origin countries to the suffix appended to alphabetic
// symbols. Countries with numeric code conventions (Japan, Hong Kong, China)
// are handled separately in normalizeNumeric.
var countrySuffix = map[string]string{
	"UK":      ".L",
	"GERMANY": ".DE",
	"FRANCE":  ".PA",
	"JAPAN":   ".T",
}

// denylist holds non-ticker tokens that index pages leak into symbol columns:
// navigation labels, country and region names, column headers, business-entity
// suffixes. All uppercase.
var denylist = map[string]struct{}{
	"WEBSITE": {}, "CLOSING": {}, "GLOBAL": {}, "EUROPE": {}, "OTHER": {},
	"ENERGY": {}, "METALS": {}, "WATER": {}, "MAJOR": {}, "CANADA": {},
	"INDIA": {}, "OCEANIA": {}, "BRAZIL": {}, "AFRICA": {}, "MEXICO": {},
	"JAPAN": {}, "FRANCE": {}, "ADDED": {}, "REMOVED": {}, "SECTOR": {},
	"INDUSTRY": {}, "CHILE": {}, "BANKS": {}, "MEDIA": {}, "REUTERS": {},
	"TYPE": {}, "HISTORY": {}, "WALES": {}, "ENGLAND": {}, "SCOTLAND": {},
	"IRELAND": {}, "SECTORS": {}, "INDICES": {}, "POLICY": {}, "ASIA": {},
	"FTSE": {}, "DAX": {}, "CAC": {}, "NIKKEI": {}, "HANG": {}, "SENG": {},
	"TOPIX": {}, "NOTES": {}, "LINKS": {}, "MOVERS": {}, "RISING": {},
	"FALLING": {}, "CHANGE": {}, "PERCENT": {}, "VOLUME": {}, "PRICE": {},
	"HIGH": {}, "LOW": {}, "UK": {}, "US": {}, "GERMANY": {}, "HONG": {},
	"KONG": {}, "CHINA": {}, "INC": {}, "LTD": {}, "CORP": {}, "PLC": {},
	"GROUP": {}, "HOLDINGS": {}, "COMPANY": {}, "NAME": {}, "SYMBOL": {},
	"TICKER": {}, "CODE": {}, "EPIC": {},
}

const maxAlphaLen = 7

// Normalize canonicalizes a raw symbol from a page with the given origin
// country tag. It returns the canonical identifier and true, or ("", false)
// when no confident normalization is possible. Callers treat false as "drop
// this candidate", never as an error.
func Normalize(raw, country string) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if sym == "" {
		return "", false
	}

	// Separators indicate parsing artifacts, not tickers
	// (dates like "SEPTEMBER 22, 2025", fused cells like "SECTOR:.DE").
	if strings.ContainsAny(sym, " ,:") {
		return "", false
	}
	if strings.Count(sym, ".") >= 2 {
		return "", false
	}

	// Already carrying a known exchange suffix: re-validate the base only.
	for _, suffix := range knownSuffixes {
		if strings.HasSuffix(sym, suffix) {
			base := strings.TrimSuffix(sym, suffix)
			if !validBase(base) {
				return "", false
			}
			// Hong Kong codes are stored zero-padded to 4 digits.
			if suffix == ".HK" && isNumeric(base) {
				return pad4(base) + ".HK", true
			}
			return sym, true
		}
	}

	// An unknown ".XX" tail is a parsing artifact.
	if strings.Contains(sym, ".") {
		return "", false
	}

	if !validBase(sym) {
		return "", false
	}

	cc := strings.ToUpper(strings.TrimSpace(country))

	if isNumeric(sym) {
		return normalizeNumeric(sym, cc)
	}

	if suffix, ok := countrySuffix[cc]; ok {
		return sym + suffix, true
	}
	// US and unknown markets list bare symbols.
	return sym, true
}

// normalizeNumeric routes pure-numeric codes by market convention. Numeric
// symbols from markets without a numeric code convention are rejected as
// year-like tokens or unrelated figures.
func normalizeNumeric(sym, country string) (string, bool) {
	switch country {
	case "CHINA":
		if len(sym) != 6 {
			return "", false
		}
		switch sym[0] {
		case '6', '9':
			return sym + ".SS", true
		case '0', '3':
			return sym + ".SZ", true
		}
		return "", false
	case "HONG KONG":
		if len(sym) > 4 {
			return "", false
		}
		return pad4(sym) + ".HK", true
	case "JAPAN":
		if len(sym) != 4 {
			return "", false
		}
		return sym + ".T", true
	}
	return "", false
}

// validBase applies the denylist and length heuristics to a symbol with any
// exchange suffix removed.
func validBase(base string) bool {
	if base == "" {
		return false
	}
	if _, bad := denylist[base]; bad {
		return false
	}
	// "DATE"/"TIME" fragments come from table furniture, never tickers.
	if strings.Contains(base, "DATE") || strings.Contains(base, "TIME") {
		return false
	}
	if isAlpha(base) && len(base) > maxAlphaLen {
		return false
	}
	if len(base) > 8 {
		return false
	}
	return true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func pad4(s string) string {
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
