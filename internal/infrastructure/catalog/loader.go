package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const unknownTitle = "Unknown Product"

// columns holds header positions; -1 means the export has no such column
type columns struct {
	identifier int
	title      int
	code       int
	price      int
	fee        int
	referral   int
	image      int
}

// Loader reads catalog exports (Keepa-style CSV) into catalog rows
type Loader struct {
	log *logrus.Entry
}

// NewLoader creates a catalog loader
func NewLoader(log logrus.FieldLogger) *Loader {
	return &Loader{log: logger.WithComponent(log, "catalog")}
}

// Load parses a CSV catalog. Only the identifier column is mandatory; rows that
// fail validation are skipped with a warning.
func (l *Loader) Load(r io.Reader) ([]domain.CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: file is empty", domain.ErrCatalogFormat)
		}
		return nil, fmt.Errorf("%w: reading header: %v", domain.ErrCatalogFormat, err)
	}

	cols, err := findColumns(header)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CatalogRow, 0)
	skipped := 0
	for n := 1; ; n++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrCatalogFormat, n, err)
		}
		if blankRecord(record) {
			continue
		}

		row, err := buildRow(record, cols, n)
		if err != nil {
			skipped++
			l.log.WithField("row", n).WithError(err).Warn("skipping catalog row")
			continue
		}
		rows = append(rows, row)
	}

	l.log.WithFields(logrus.Fields{
		"rows":    len(rows),
		"skipped": skipped,
	}).Info("catalog loaded")

	return rows, nil
}

func findColumns(header []string) (columns, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		normalized[i] = strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
	}

	cols := columns{
		identifier: exactOrContains(normalized, "asin"),
		title:      exactOrContains(normalized, "title"),
		code: firstMatch(normalized, func(h string) bool {
			return strings.Contains(h, "upc") || strings.Contains(h, "codes")
		}),
		price: firstMatch(normalized, func(h string) bool {
			return strings.Contains(h, "buy box") && !strings.Contains(h, "fee")
		}),
		referral: firstMatch(normalized, func(h string) bool {
			return strings.Contains(h, "referral fee") && !strings.Contains(h, "%")
		}),
		image: firstMatch(normalized, func(h string) bool {
			return strings.Contains(h, "image")
		}),
	}

	cols.fee = firstMatch(normalized, func(h string) bool {
		return strings.Contains(h, "pick&pack") || strings.Contains(h, "fba fee")
	})
	if cols.fee < 0 {
		cols.fee = firstMatch(normalized, func(h string) bool {
			return strings.Contains(h, "fee") && !strings.Contains(h, "referral")
		})
	}

	if cols.identifier < 0 {
		return cols, fmt.Errorf("%w: missing ASIN column", domain.ErrCatalogFormat)
	}
	return cols, nil
}

func exactOrContains(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return firstMatch(headers, func(h string) bool { return strings.Contains(h, name) })
}

func firstMatch(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}

func buildRow(record []string, cols columns, n int) (domain.CatalogRow, error) {
	identifier := field(record, cols.identifier)
	if identifier == "" {
		identifier = fmt.Sprintf("N/A-%d", n)
	}

	title := field(record, cols.title)
	if title == "" {
		title = unknownTitle
	}

	var referral *decimal.Decimal
	if raw := field(record, cols.referral); raw != "" {
		fee := parseMoney(raw)
		referral = &fee
	}

	return domain.NewCatalogRow(
		identifier,
		title,
		firstCode(field(record, cols.code)),
		parseMoney(field(record, cols.price)),
		parseMoney(field(record, cols.fee)),
		referral,
		firstImage(field(record, cols.image)),
	)
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[i], `"`))
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseMoney reads "$1,299.99" style amounts; anything unparseable is zero
func parseMoney(s string) decimal.Decimal {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// firstCode keeps the first of several codes listed in one cell
func firstCode(s string) string {
	if i := strings.IndexAny(s, ",;"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// firstImage keeps the first URL of a ';' separated image list
func firstImage(s string) string {
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
