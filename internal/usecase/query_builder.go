package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arbilens/backend/internal/domain"
)

// maxQueryLength keeps provider queries within what the search endpoint accepts
const maxQueryLength = 150

var (
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// quote and control characters copied in from spreadsheet exports
	queryStripPattern = regexp.MustCompile(`["“”\x00-\x1f]`)
)

// BuildQuery turns a catalog row into a shopping search query.
// With a product code the query is "code title", which narrows results to pages
// mentioning both; otherwise it is the title alone.
func BuildQuery(row domain.CatalogRow) string {
	title := normalizeQueryText(row.Title)

	query := title
	if row.HasCode() {
		query = strings.TrimSpace(normalizeQueryText(row.Code) + " " + title)
	}

	return truncateQuery(query)
}

func normalizeQueryText(s string) string {
	s = queryStripPattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateQuery cuts long titles at a word boundary, never inside a rune
func truncateQuery(query string) string {
	if len(query) <= maxQueryLength {
		return query
	}
	n := maxQueryLength
	for n > 0 && !utf8.RuneStart(query[n]) {
		n--
	}
	cut := query[:n]
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > maxQueryLength/2 {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(cut)
}
