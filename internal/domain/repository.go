package domain

import "context"

// ShoppingProvider defines the interface for the external shopping-search capability
type ShoppingProvider interface {
	Search(ctx context.Context, request SearchRequest) (*ShoppingResponse, error)
}

// CredentialVerifier checks that an API key is accepted by the provider
type CredentialVerifier interface {
	VerifyKey(ctx context.Context, apiKey string) error
}

// OfferCache memoises offer lookups per catalog identifier for the life of the process
type OfferCache interface {
	Get(identifier string) (CacheEntry, bool)
	Put(identifier string, offers OfferSet, status FetchStatus) CacheEntry
	Delete(identifier string)
	Clear()
	Len() int
}

// ProgressSink receives incremental progress and the terminal summary of a batch
type ProgressSink interface {
	Progress(p Progress, row CatalogRow)
	Done(summary Summary)
}
