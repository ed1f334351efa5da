package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoSelection marks a row with no chosen offer
const NoSelection = -1

// Offer is one third-party listing found by the shopping provider
type Offer struct {
	Store     string          `json:"store"`
	Price     decimal.Decimal `json:"price"`
	Link      string          `json:"link"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Title     string          `json:"title,omitempty"`
}

// Valid reports whether the offer carries a usable price
func (o Offer) Valid() bool {
	return o.Price.IsPositive()
}

// OfferSet is the ranked candidate list for one catalog row, cheapest first
type OfferSet []Offer

// Cheapest returns the first offer, if any
func (s OfferSet) Cheapest() (Offer, bool) {
	return s.At(0)
}

// At returns the offer at index i, if it exists
func (s OfferSet) At(i int) (Offer, bool) {
	if i < 0 || i >= len(s) {
		return Offer{}, false
	}
	return s[i], true
}

// Selection is the chosen candidate index for one catalog row
type Selection struct {
	Identifier string `json:"identifier"`
	Index      int    `json:"index"`
}

// None reports whether nothing is selected
func (s Selection) None() bool {
	return s.Index == NoSelection
}

// FetchStatus classifies the outcome of an offer lookup
type FetchStatus string

const (
	FetchOK                FetchStatus = "ok"
	FetchEmpty             FetchStatus = "empty"
	FetchCached            FetchStatus = "cached"
	FetchMissingCredential FetchStatus = "missing_credential"
	FetchTransportFailure  FetchStatus = "transport_failure"
	FetchParseFailure      FetchStatus = "parse_failure"
)

// Failed reports whether the status represents a failed provider call
func (s FetchStatus) Failed() bool {
	return s == FetchMissingCredential || s == FetchTransportFailure || s == FetchParseFailure
}

// FetchResult is what the offer fetcher returns instead of raising: the offers
// found (possibly none) plus why the set is what it is.
type FetchResult struct {
	Offers OfferSet
	Status FetchStatus
	Err    error
}

// CacheEntry is a memoised offer lookup for one identifier
type CacheEntry struct {
	Offers   OfferSet    `json:"offers"`
	Status   FetchStatus `json:"status"`
	Sequence uint64      `json:"sequence"`
	StoredAt time.Time   `json:"storedAt"`
}
