package harvest

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// headerSynonyms are the known header names for ticker-bearing columns,
// lowercase.
var headerSynonyms = map[string]struct{}{
	"symbol":        {},
	"ticker":        {},
	"ticker symbol": {},
	"code":          {},
	"epic":          {},
}

// extractTables parses the page and returns every table as rows of cell text.
func extractTables(content []byte) [][][]string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	var tables [][][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if rows := extractRows(n); len(rows) > 0 {
				tables = append(tables, rows)
			}
			return // nested tables are noise on index pages
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables
}

func extractRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, nodeText(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// tickerColumn locates the ticker-bearing column of a table: first by header
// name, then by structural sniffing — a column whose sampled values are short,
// alphabetic and consistent in shape. Returns -1 when no column qualifies.
func tickerColumn(rows [][]string) int {
	if len(rows) < 2 {
		return -1
	}

	for i, header := range rows[0] {
		if _, ok := headerSynonyms[strings.ToLower(strings.TrimSpace(header))]; ok {
			return i
		}
	}

	width := len(rows[0])
	bestCol, bestRatio := -1, 0.0
	for col := 0; col < width; col++ {
		sampled, shaped := 0, 0
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[col])
			if v == "" {
				continue
			}
			sampled++
			if tickerShaped(v) {
				shaped++
			}
			if sampled >= 20 {
				break
			}
		}
		if sampled < 3 {
			continue
		}
		ratio := float64(shaped) / float64(sampled)
		if ratio >= 0.8 && ratio > bestRatio {
			bestCol, bestRatio = col, ratio
		}
	}
	return bestCol
}

// tickerShaped reports whether a cell value looks like a bare ticker:
// short, no internal whitespace, letters/digits with at most one dot or dash.
func tickerShaped(v string) bool {
	if len(v) < 1 || len(v) > 8 {
		return false
	}
	dots := 0
	for _, r := range v {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		case r == '-':
		default:
			return false
		}
	}
	return dots <= 1
}

// parseTableCandidates extracts raw symbol strings from every table on the
// page using the generic column-detection model.
func parseTableCandidates(content []byte) []string {
	var out []string
	for _, rows := range extractTables(content) {
		col := tickerColumn(rows)
		if col < 0 {
			continue
		}
		for _, row := range rows[1:] {
			if col < len(row) {
				out = append(out, row[col])
			}
		}
	}
	return out
}

// exchangeCodePattern matches the embedded exchange-code marker in list items
// on pages that do not fit the table model (e.g. "SEHK: 700").
var exchangeCodePattern = regexp.MustCompile(`SEHK:\s*(\d{1,5})`)

// parseCodeListCandidates extracts numeric exchange codes from list items.
// The codes are emitted bare; the normalizer zero-pads and suffixes them
// according to the source's country tag.
func parseCodeListCandidates(content []byte) []string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			for _, m := range exchangeCodePattern.FindAllStringSubmatch(nodeText(n), -1) {
				out = append(out, m[1])
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}
