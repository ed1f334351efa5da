package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostBreakdown_Profitable(t *testing.T) {
	tests := []struct {
		profit string
		want   bool
	}{
		{"0.01", true},
		{"0", false},
		{"0.00", false},
		{"-0.01", false},
		{"104.915", true},
	}

	for _, tt := range tests {
		c := CostBreakdown{NetProfit: decimal.RequireFromString(tt.profit)}
		assert.Equal(t, tt.want, c.Profitable(), "profit %s", tt.profit)
	}
}

func TestOfferSet(t *testing.T) {
	set := OfferSet{
		{Store: "Target", Price: decimal.NewFromFloat(11.5)},
		{Store: "Walmart", Price: decimal.NewFromInt(12)},
	}

	cheapest, ok := set.Cheapest()
	assert.True(t, ok)
	assert.Equal(t, "Target", cheapest.Store)

	second, ok := set.At(1)
	assert.True(t, ok)
	assert.Equal(t, "Walmart", second.Store)

	_, ok = set.At(2)
	assert.False(t, ok)
	_, ok = set.At(NoSelection)
	assert.False(t, ok)

	_, ok = OfferSet{}.Cheapest()
	assert.False(t, ok)
}

func TestOffer_Valid(t *testing.T) {
	assert.True(t, Offer{Price: decimal.NewFromFloat(0.01)}.Valid())
	assert.False(t, Offer{Price: decimal.Zero}.Valid())
	assert.False(t, Offer{Price: decimal.NewFromInt(-3)}.Valid())
}

func TestFetchStatus_Failed(t *testing.T) {
	failed := []FetchStatus{FetchMissingCredential, FetchTransportFailure, FetchParseFailure}
	ok := []FetchStatus{FetchOK, FetchEmpty, FetchCached}

	for _, s := range failed {
		assert.True(t, s.Failed(), s)
	}
	for _, s := range ok {
		assert.False(t, s.Failed(), s)
	}
}
