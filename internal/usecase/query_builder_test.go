package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/arbilens/backend/internal/domain"
)

func TestBuildQuery(t *testing.T) {
	testCases := []struct {
		name string
		row  domain.CatalogRow
		want string
	}{
		{
			name: "code first then title",
			row:  domain.CatalogRow{Identifier: "B01", Title: "Acme Widget 2-Pack", Code: "012345678905"},
			want: "012345678905 Acme Widget 2-Pack",
		},
		{
			name: "title only without code",
			row:  domain.CatalogRow{Identifier: "B02", Title: "Acme Widget"},
			want: "Acme Widget",
		},
		{
			name: "sentinel N/A code is ignored",
			row:  domain.CatalogRow{Identifier: "B03", Title: "Acme Widget", Code: "N/A"},
			want: "Acme Widget",
		},
		{
			name: "sentinel nan code is ignored",
			row:  domain.CatalogRow{Identifier: "B04", Title: "Acme Widget", Code: "nan"},
			want: "Acme Widget",
		},
		{
			name: "whitespace and quotes collapsed",
			row:  domain.CatalogRow{Identifier: "B05", Title: "  Acme   \"Pro\"\tWidget ", Code: " 0123 "},
			want: "0123 Acme Pro Widget",
		},
		{
			name: "empty row gives empty query",
			row:  domain.CatalogRow{Identifier: "B06"},
			want: "",
		},
		{
			name: "code without title",
			row:  domain.CatalogRow{Identifier: "B07", Code: "0123"},
			want: "0123",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildQuery(tc.row)
			if got != tc.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildQuery_TruncatesAtWordBoundary(t *testing.T) {
	row := domain.CatalogRow{
		Identifier: "B10",
		Title:      strings.Repeat("widget ", 40),
	}

	got := BuildQuery(row)

	if len(got) > maxQueryLength {
		t.Errorf("len(BuildQuery()) = %d, want <= %d", len(got), maxQueryLength)
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "widge") {
		t.Errorf("BuildQuery() = %q, want cut at word boundary", got)
	}
}

func TestBuildQuery_TruncatesOnRuneBoundary(t *testing.T) {
	row := domain.CatalogRow{
		Identifier: "B12",
		Title:      "a" + strings.Repeat("日本", 60),
	}

	got := BuildQuery(row)

	if !utf8.ValidString(got) {
		t.Fatalf("BuildQuery() = %q, not valid UTF-8", got)
	}
	if len(got) != 148 {
		t.Errorf("len(BuildQuery()) = %d, want 148", len(got))
	}
}

func TestBuildQuery_IsPure(t *testing.T) {
	row := domain.CatalogRow{Identifier: "B11", Title: "Acme Widget", Code: "0123"}

	first := BuildQuery(row)
	second := BuildQuery(row)

	if first != second {
		t.Errorf("BuildQuery() not deterministic: %q vs %q", first, second)
	}
}
