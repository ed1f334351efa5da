package serpapi

import (
	"regexp"
	"strings"

	"github.com/arbilens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	unknownStore = "Unknown"
	missingLink  = "#"
)

// priceNumberRegex finds the first amount in a display price like "$1,299.99 used"
var priceNumberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// MapToOffer converts a raw shopping record into an Offer.
// ok is false when the record has no usable price; zero never means free.
func MapToOffer(result domain.ShoppingResult) (domain.Offer, bool) {
	price, ok := ExtractPrice(result)
	if !ok {
		return domain.Offer{}, false
	}

	store := strings.TrimSpace(result.Source)
	if store == "" {
		store = unknownStore
	}

	link := strings.TrimSpace(result.Link)
	if link == "" {
		link = strings.TrimSpace(result.ProductLink)
	}
	if link == "" {
		link = missingLink
	}

	return domain.Offer{
		Store:     store,
		Price:     price,
		Link:      link,
		Thumbnail: strings.TrimSpace(result.Thumbnail),
		Title:     strings.TrimSpace(result.Title),
	}, true
}

// ExtractPrice prefers the provider's numeric price and falls back to parsing the display string
func ExtractPrice(result domain.ShoppingResult) (decimal.Decimal, bool) {
	if result.ExtractedPrice != "" {
		if price, err := decimal.NewFromString(result.ExtractedPrice.String()); err == nil && price.IsPositive() {
			return price, true
		}
	}
	return ParseDisplayPrice(result.Price)
}

// ParseDisplayPrice parses strings like "$12.99" or "1,299.00 USD"
func ParseDisplayPrice(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	match := priceNumberRegex.FindString(cleaned)
	if match == "" {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return positive(price)
}

func positive(price decimal.Decimal) (decimal.Decimal, bool) {
	if !price.IsPositive() {
		return decimal.Zero, false
	}
	return price, true
}
