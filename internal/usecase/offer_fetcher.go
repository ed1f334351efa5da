package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/arbilens/backend/internal/domain"
	"github.com/arbilens/backend/internal/infrastructure/serpapi"
	"github.com/arbilens/backend/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	defaultResultHint = 5
	maxResultHint     = 20
)

// OfferFetcherConfig holds configuration for the offer fetcher
type OfferFetcherConfig struct {
	ResultHint        int
	TopN              int
	ExcludedMerchants []string
}

// OfferFetcher turns a query into a ranked OfferSet. It never returns an error:
// every failure collapses to an empty set plus a status.
type OfferFetcher struct {
	provider   domain.ShoppingProvider
	ranker     *OfferRanker
	resultHint int
	log        *logrus.Entry
}

// NewOfferFetcher creates a new offer fetcher
func NewOfferFetcher(provider domain.ShoppingProvider, config OfferFetcherConfig, log logrus.FieldLogger) *OfferFetcher {
	hint := config.ResultHint
	if hint <= 0 {
		hint = defaultResultHint
	}
	if hint > maxResultHint {
		hint = maxResultHint
	}

	return &OfferFetcher{
		provider:   provider,
		ranker:     NewOfferRanker(config.ExcludedMerchants, config.TopN),
		resultHint: hint,
		log:        logger.WithComponent(log, "offer_fetcher"),
	}
}

// Ranker exposes the ranking rules the fetcher applies
func (f *OfferFetcher) Ranker() *OfferRanker {
	return f.ranker
}

// Fetch issues at most one provider call for the query
func (f *OfferFetcher) Fetch(ctx context.Context, query, apiKey string) (result domain.FetchResult) {
	if apiKey == "" {
		return f.fail(query, domain.FetchMissingCredential, domain.ErrMissingCredential)
	}
	if query == "" {
		return domain.FetchResult{Offers: domain.OfferSet{}, Status: domain.FetchEmpty}
	}

	defer func() {
		if r := recover(); r != nil {
			result = f.fail(query, domain.FetchParseFailure, fmt.Errorf("%w: panic: %v", domain.ErrParseFailure, r))
		}
	}()

	resp, err := f.provider.Search(ctx, domain.SearchRequest{
		Query:  query,
		Num:    f.resultHint,
		APIKey: apiKey,
	})
	if err != nil {
		return f.fail(query, classifyFetchError(err), err)
	}
	if resp == nil {
		return f.fail(query, domain.FetchParseFailure, fmt.Errorf("%w: empty response", domain.ErrParseFailure))
	}

	offers := make([]domain.Offer, 0, len(resp.ShoppingResults))
	for _, item := range resp.ShoppingResults {
		if offer, ok := serpapi.MapToOffer(item); ok {
			offers = append(offers, offer)
		}
	}

	ranked := f.ranker.Rank(offers)

	f.log.WithFields(logrus.Fields{
		"query":    query,
		"returned": len(resp.ShoppingResults),
		"priced":   len(offers),
		"kept":     len(ranked),
	}).Debug("offers fetched")

	if len(ranked) == 0 {
		return domain.FetchResult{Offers: domain.OfferSet{}, Status: domain.FetchEmpty}
	}
	return domain.FetchResult{Offers: ranked, Status: domain.FetchOK}
}

func (f *OfferFetcher) fail(query string, status domain.FetchStatus, err error) domain.FetchResult {
	f.log.WithFields(logrus.Fields{
		"query":  query,
		"status": status,
	}).WithError(err).Warn("offer lookup failed")

	return domain.FetchResult{Offers: domain.OfferSet{}, Status: status, Err: err}
}

func classifyFetchError(err error) domain.FetchStatus {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return domain.FetchMissingCredential
	case errors.Is(err, domain.ErrParseFailure):
		return domain.FetchParseFailure
	default:
		return domain.FetchTransportFailure
	}
}
