package usecase

import (
	"sort"
	"strings"

	"github.com/arbilens/backend/internal/domain"
)

const (
	defaultTopN = 2
	maxTopN     = 10
)

// DefaultExcludedMerchants are marketplaces that are not restockable suppliers:
// the selling platform itself and peer-to-peer marketplaces.
var DefaultExcludedMerchants = []string{"ebay", "mercari", "poshmark", "amazon", "etsy"}

// OfferRanker applies the merchant exclusion rule and orders offers cheapest first
type OfferRanker struct {
	excluded []string
	topN     int
}

// NewOfferRanker creates a ranker. A nil exclusion list means the defaults;
// an empty non-nil list disables exclusion.
func NewOfferRanker(excluded []string, topN int) *OfferRanker {
	if excluded == nil {
		excluded = DefaultExcludedMerchants
	}
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	normalized := make([]string, 0, len(excluded))
	for _, m := range excluded {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			normalized = append(normalized, m)
		}
	}

	return &OfferRanker{excluded: normalized, topN: topN}
}

// TopN returns the maximum offer set length
func (r *OfferRanker) TopN() int {
	return r.topN
}

// Rank filters, sorts and truncates offers into an OfferSet
func (r *OfferRanker) Rank(offers []domain.Offer) domain.OfferSet {
	return RankOffers(FilterExcluded(offers, r.excluded), r.topN)
}

// Excluded reports whether a store name contains an excluded marketplace, case-insensitively
func (r *OfferRanker) Excluded(store string) bool {
	return isExcluded(store, r.excluded)
}

// FilterExcluded drops invalid offers and offers from excluded merchants.
// Applying it twice changes nothing.
func FilterExcluded(offers []domain.Offer, excluded []string) []domain.Offer {
	kept := make([]domain.Offer, 0, len(offers))
	for _, offer := range offers {
		if !offer.Valid() || isExcluded(offer.Store, excluded) {
			continue
		}
		kept = append(kept, offer)
	}
	return kept
}

// RankOffers sorts ascending by price (stable, so provider order breaks ties) and keeps the first topN
func RankOffers(offers []domain.Offer, topN int) domain.OfferSet {
	ranked := make(domain.OfferSet, len(offers))
	copy(ranked, offers)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price.LessThan(ranked[j].Price)
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func isExcluded(store string, excluded []string) bool {
	storeLower := strings.ToLower(store)
	for _, marketplace := range excluded {
		if strings.Contains(storeLower, strings.ToLower(marketplace)) {
			return true
		}
	}
	return false
}
