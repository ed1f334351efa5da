package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// codeSentinels are placeholder values catalog exports use for a missing product code
var codeSentinels = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"nan":  true,
	"none": true,
	"null": true,
	"-":    true,
}

// CatalogRow is one marketplace listing from the catalog export. Read-only once built.
type CatalogRow struct {
	Identifier  string           `json:"identifier"`
	Title       string           `json:"title"`
	Code        string           `json:"code,omitempty"` // UPC or similar
	ListPrice   decimal.Decimal  `json:"listPrice"`
	PlatformFee decimal.Decimal  `json:"platformFee"`
	ReferralFee *decimal.Decimal `json:"referralFee,omitempty"` // nil when the export carries no referral figure
	ImageURL    string           `json:"imageUrl,omitempty"`
}

// NewCatalogRow validates the required fields and returns the row
func NewCatalogRow(identifier, title, code string, listPrice, platformFee decimal.Decimal, referralFee *decimal.Decimal, imageURL string) (CatalogRow, error) {
	row := CatalogRow{
		Identifier:  strings.TrimSpace(identifier),
		Title:       strings.TrimSpace(title),
		Code:        strings.TrimSpace(code),
		ListPrice:   listPrice,
		PlatformFee: platformFee,
		ReferralFee: referralFee,
		ImageURL:    strings.TrimSpace(imageURL),
	}
	if err := row.Validate(); err != nil {
		return CatalogRow{}, err
	}
	return row, nil
}

// Validate checks the invariants of a catalog row
func (r CatalogRow) Validate() error {
	if r.Identifier == "" {
		return fmt.Errorf("%w: identifier is required", ErrInvalidCatalogRow)
	}
	if r.ListPrice.IsNegative() {
		return fmt.Errorf("%w: %s: negative list price %s", ErrInvalidCatalogRow, r.Identifier, r.ListPrice)
	}
	if r.PlatformFee.IsNegative() {
		return fmt.Errorf("%w: %s: negative platform fee %s", ErrInvalidCatalogRow, r.Identifier, r.PlatformFee)
	}
	if r.ReferralFee != nil && r.ReferralFee.IsNegative() {
		return fmt.Errorf("%w: %s: negative referral fee %s", ErrInvalidCatalogRow, r.Identifier, r.ReferralFee)
	}
	return nil
}

// HasCode reports whether the row carries a usable product code
func (r CatalogRow) HasCode() bool {
	return !IsSentinelCode(r.Code)
}

// IsSentinelCode reports whether a code is empty or one of the export placeholders
func IsSentinelCode(code string) bool {
	return codeSentinels[strings.ToLower(strings.TrimSpace(code))]
}
