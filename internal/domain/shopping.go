package domain

import "encoding/json"

// SearchRequest is one query against the shopping provider
type SearchRequest struct {
	Query  string
	Num    int // result-count hint
	APIKey string
}

// ShoppingResult is one raw record from the provider's shopping results.
// Fields are decoded loosely; the fetcher decides which records are usable.
type ShoppingResult struct {
	Position       int         `json:"position"`
	Title          string      `json:"title"`
	Source         string      `json:"source"`
	Link           string      `json:"link"`
	ProductLink    string      `json:"product_link"`
	Price          string      `json:"price"`
	ExtractedPrice json.Number `json:"extracted_price"`
	Thumbnail      string      `json:"thumbnail"`
}

// ShoppingResponse represents the response from the provider search API
type ShoppingResponse struct {
	SearchMetadata  SearchMetadata   `json:"search_metadata"`
	ShoppingResults []ShoppingResult `json:"shopping_results"`
	Error           string           `json:"error,omitempty"`
}

// SearchMetadata carries the provider's bookkeeping for one search
type SearchMetadata struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
